package hci

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	commandMarker = "< hci command:"
	eventMarker   = "> hci event:"
)

var (
	hexLiteralPattern = regexp.MustCompile(`0x[0-9a-f]*`)
	plenPattern       = regexp.MustCompile(`plen (\d+)`)
)

// Codec validates and decodes the text printed by hcitool for one
// command/event exchange.
type Codec interface {
	Valid(text string) bool
	Decode(text string) (*Response, error)
}

// Command is the command half of a decoded exchange
type Command struct {
	Opcode         Opcode
	Name           string
	DeclaredLength int
	PayloadHex     string
	Payload        []byte
}

func (c Command) String() string {
	return fmt.Sprintf("hci command: %s\n"+
		"\topcode: %s (ogf: 0x%02x, ocf: 0x%02x)\n"+
		"\tplen: %d\n"+
		"\tpayload: %s",
		c.Name, c.Opcode, c.Opcode.Group(), c.Opcode.Sub(), c.DeclaredLength, c.PayloadHex)
}

// Event is the event half of a decoded exchange
type Event struct {
	Code           uint8
	Name           string
	DeclaredLength int
	PayloadHex     string
	Payload        []byte
}

func (e Event) String() string {
	return fmt.Sprintf("hci event: %s\n"+
		"\tcode: 0x%02x\n"+
		"\tplen: %d\n"+
		"\tpayload: %s",
		e.Name, e.Code, e.DeclaredLength, e.PayloadHex)
}

// Response pairs the echoed command with the event the controller returned
type Response struct {
	Command Command
	Event   Event
	Raw     string // original text, kept for diagnostics
}

func (r *Response) String() string {
	return r.Command.String() + "\n" + r.Event.String()
}

// TextCodec decodes hcitool's human readable output by pattern matching
type TextCodec struct {
	Commands *CommandTable
	Events   *EventTable
	Logger   zerolog.Logger
}

// NewTextCodec returns a codec resolving names through the given tables
func NewTextCodec(commands *CommandTable, events *EventTable, logger zerolog.Logger) *TextCodec {
	return &TextCodec{Commands: commands, Events: events, Logger: logger}
}

// Valid reports whether text contains both the command echo and the event
// marker, ignoring case.
func (c *TextCodec) Valid(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, commandMarker) && strings.Contains(lower, eventMarker)
}

// Decode parses a response that passed Valid. Any mismatch between a declared
// length and the payload actually printed is reported as a *ProtocolError.
func (c *TextCodec) Decode(text string) (*Response, error) {
	lower := strings.ToLower(text)

	eventAt := strings.Index(lower, eventMarker)
	commandAt := strings.Index(lower, commandMarker)
	if eventAt < 0 || commandAt < 0 || commandAt > eventAt {
		return nil, c.corrupt(text, "missing or misordered section markers", nil)
	}

	literals := hexLiteralPattern.FindAllString(lower, -1)
	if len(literals) != 3 {
		return nil, c.corrupt(text, fmt.Sprintf("expected 3 hex fields, found %d", len(literals)), nil)
	}
	plens := plenPattern.FindAllStringSubmatch(lower, -1)
	if len(plens) != 2 {
		return nil, c.corrupt(text, fmt.Sprintf("expected 2 plen fields, found %d", len(plens)), nil)
	}

	ogf, err := parseHexField(literals[0], 8)
	if err != nil {
		return nil, c.corrupt(text, "bad ogf: "+err.Error(), nil)
	}
	ocf, err := parseHexField(literals[1], 8)
	if err != nil {
		return nil, c.corrupt(text, "bad ocf: "+err.Error(), nil)
	}
	code, err := parseHexField(literals[2], 8)
	if err != nil {
		return nil, c.corrupt(text, "bad event code: "+err.Error(), nil)
	}
	cmdPlen, err := strconv.Atoi(plens[0][1])
	if err != nil {
		return nil, c.corrupt(text, "bad command plen: "+err.Error(), nil)
	}
	evtPlen, err := strconv.Atoi(plens[1][1])
	if err != nil {
		return nil, c.corrupt(text, "bad event plen: "+err.Error(), nil)
	}

	cmdHex := payloadHex(lower[commandAt:eventAt])
	evtHex := payloadHex(lower[eventAt:])

	op := NewOpcode(uint8(ogf), uint8(ocf))
	resp := &Response{
		Command: Command{
			Opcode:         op,
			Name:           c.Commands.Name(op),
			DeclaredLength: cmdPlen,
			PayloadHex:     cmdHex,
		},
		Event: Event{
			Code:           uint8(code),
			Name:           c.Events.Name(uint8(code)),
			DeclaredLength: evtPlen,
			PayloadHex:     evtHex,
		},
		Raw: text,
	}

	c.Logger.Debug().Str("response", resp.String()).Msg("decoded hci response")

	// plen is in bytes, the payload strings are in nibbles
	if cmdPlen*2 != len(cmdHex) || evtPlen*2 != len(evtHex) {
		reason := fmt.Sprintf("command plen %d (%d) or event plen %d (%d) does not match",
			cmdPlen, len(cmdHex), evtPlen, len(evtHex))
		return nil, c.corrupt(text, reason, resp)
	}

	if resp.Command.Payload, err = hex.DecodeString(cmdHex); err != nil {
		return nil, c.corrupt(text, "command payload: "+err.Error(), resp)
	}
	if resp.Event.Payload, err = hex.DecodeString(evtHex); err != nil {
		return nil, c.corrupt(text, "event payload: "+err.Error(), resp)
	}

	return resp, nil
}

func (c *TextCodec) corrupt(raw, reason string, resp *Response) error {
	ev := critical(&c.Logger).Str("reason", reason).Str("raw", raw)
	if resp != nil {
		ev = ev.Str("response", resp.String())
	}
	ev.Msg("hci response failed validation")

	return &ProtocolError{Reason: reason, Raw: raw, Response: resp}
}

// payloadHex drops the section header line and concatenates every token that
// is exactly two hex digits.
func payloadHex(section string) string {
	_, body, found := strings.Cut(section, "\n")
	if !found {
		return ""
	}

	var b strings.Builder
	for _, tok := range strings.Fields(body) {
		if len(tok) == 2 && isHexDigit(tok[0]) && isHexDigit(tok[1]) {
			b.WriteString(tok)
		}
	}
	return b.String()
}

func parseHexField(literal string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(literal, "0x"), 16, bits)
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}

// critical returns an event at the highest severity without terminating the
// process; zerolog only exits for Fatal(), not WithLevel.
func critical(logger *zerolog.Logger) *zerolog.Event {
	return logger.WithLevel(zerolog.FatalLevel)
}
