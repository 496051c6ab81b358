package hci

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseOpcode resolves a command name from table, or parses a numeric opcode
// in hcitool addressing ("0x0303", "0303").
func ParseOpcode(s string, table *CommandTable) (Opcode, error) {
	if table != nil {
		if op, ok := table.Lookup(s); ok {
			return op, nil
		}
		if op, ok := table.Lookup("COMND " + s); ok {
			return op, nil
		}
	}

	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid opcode %q: not a known command name or 16-bit hex value", s)
	}
	return Opcode(v), nil
}

// ParsePayload parses hex bytes written as "01 02 ff", "0x01 0x02" or "0102ff"
func ParsePayload(fields ...string) ([]byte, error) {
	var b strings.Builder
	for _, f := range fields {
		for _, tok := range strings.Fields(f) {
			tok = strings.TrimPrefix(strings.ToLower(tok), "0x")
			if len(tok) == 1 {
				tok = "0" + tok
			}
			b.WriteString(tok)
		}
	}

	s := b.String()
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hex payload must have even length")
	}
	payload, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	if len(payload) > 255 {
		return nil, fmt.Errorf("payload of %d bytes exceeds the 255 byte HCI limit", len(payload))
	}
	return payload, nil
}

// ParseCommandLine splits "<opcode|name> [bytes...]" into its parts
func ParseCommandLine(line string, table *CommandTable) (Opcode, []byte, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("empty command")
	}

	op, err := ParseOpcode(fields[0], table)
	if err != nil {
		return 0, nil, err
	}
	payload, err := ParsePayload(fields[1:]...)
	if err != nil {
		return 0, nil, err
	}
	return op, payload, nil
}
