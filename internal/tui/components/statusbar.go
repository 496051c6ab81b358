package components

import (
	"fmt"

	"github.com/allbin/go-hci"
	"github.com/allbin/go-hci/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StateMsg carries a supervisor state change into the program
type StateMsg struct {
	State hci.State
}

// StatusBar shows the interface, the supervisor state and the last error
type StatusBar struct {
	title     string
	iface     string
	service   string
	state     hci.State
	sent      int
	failed    int
	lastError error
	width     int
}

func NewStatusBar(title, iface, service string) *StatusBar {
	return &StatusBar{
		title:   title,
		iface:   iface,
		service: service,
		state:   hci.StateIdle,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetState(state hci.State) {
	sb.state = state
}

func (sb *StatusBar) State() hci.State {
	return sb.state
}

// Record counts a finished exchange
func (sb *StatusBar) Record(err error) {
	sb.sent++
	if err != nil {
		sb.failed++
	}
	sb.lastError = err
}

func (sb *StatusBar) View() string {
	title := styles.TitleStyle.Render(sb.title)
	iface := fmt.Sprintf(" %s via %s ", sb.iface, sb.service)
	state := styles.StateStyle(sb.state).Render(sb.state.String())
	counts := fmt.Sprintf(" sent %d, failed %d", sb.sent, sb.failed)

	line := lipgloss.JoinHorizontal(lipgloss.Left, title, iface, state, counts)
	if sb.lastError != nil {
		line = lipgloss.JoinVertical(lipgloss.Left, line, styles.ErrorStyle.Render(sb.lastError.Error()))
	}
	if sb.width > 0 {
		return lipgloss.NewStyle().Width(sb.width).Render(line)
	}
	return line
}
