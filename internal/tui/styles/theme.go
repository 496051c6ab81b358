package styles

import (
	"github.com/allbin/go-hci"
	"github.com/allbin/go-hci/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	StatusReadyStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusBusyStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true)

	StatusRecoveringStyle = lipgloss.NewStyle().
				Foreground(colors.Peach).
				Bold(true)

	StatusFailedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)
)

// StateStyle returns the status style for a supervisor state
func StateStyle(state hci.State) lipgloss.Style {
	switch state {
	case hci.StateIdle, hci.StateSucceeded, hci.StateDeviceConfirmed:
		return StatusReadyStyle
	case hci.StateRunning:
		return StatusBusyStyle
	case hci.StateTimedOut, hci.StateRecovering, hci.StateRecoverySkipped:
		return StatusRecoveringStyle
	default:
		return StatusFailedStyle
	}
}
