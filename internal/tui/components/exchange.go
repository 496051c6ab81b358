package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-hci"
	"github.com/allbin/go-hci/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// ExchangeMsg reports the outcome of one command sent from the console
type ExchangeMsg struct {
	Timestamp time.Time
	Opcode    hci.Opcode
	Payload   []byte
	Response  *hci.Response
	Err       error
}

var (
	txStyle   = lipgloss.NewStyle().Foreground(colors.Blue).Bold(true)
	rxStyle   = lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(colors.Red).Bold(true)
	timeStyle = lipgloss.NewStyle().Foreground(colors.Overlay0)
	nameStyle = lipgloss.NewStyle().Foreground(colors.Text)
	hexStyle  = lipgloss.NewStyle().Foreground(colors.Teal)
)

// FormatExchange renders the TX line and the RX (or error) line of msg
func FormatExchange(msg ExchangeMsg, commands *hci.CommandTable) []string {
	ts := timeStyle.Render(msg.Timestamp.Format("15:04:05.000"))

	tx := fmt.Sprintf("%s %s %s %s",
		ts,
		txStyle.Render("TX ↗"),
		nameStyle.Render(fmt.Sprintf("%s (%s)", commands.Name(msg.Opcode), msg.Opcode)),
		hexStyle.Render(FormatHex(msg.Payload)))

	if msg.Err != nil || msg.Response == nil {
		if msg.Err == nil {
			msg.Err = hci.ErrInvalidResponse
		}
		return []string{tx, fmt.Sprintf("%s %s %v", ts, errStyle.Render("ERR ✗"), msg.Err)}
	}

	evt := msg.Response.Event
	rx := fmt.Sprintf("%s %s %s %s",
		ts,
		rxStyle.Render("RX ↙"),
		nameStyle.Render(fmt.Sprintf("%s plen %d", evt.Name, evt.DeclaredLength)),
		hexStyle.Render(FormatHex(evt.Payload)))

	return []string{tx, rx}
}

// FormatHex renders bytes as space separated upper case hex
func FormatHex(data []byte) string {
	if len(data) == 0 {
		return "-"
	}
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
