package components

import (
	"github.com/allbin/go-hci/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Input is a single line command input with history
type Input struct {
	textInput    textinput.Model
	history      []string
	historyIndex int
	currentInput string // stored while navigating history
}

func NewInput(placeholder string) *Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Prompt = "hci> "
	ti.Focus()

	return &Input{
		textInput:    ti,
		history:      make([]string, 0),
		historyIndex: -1,
	}
}

func (i *Input) SetWidth(width int) {
	// border(2) + padding(2) + prompt(5)
	usable := width - 9
	if usable < 20 {
		usable = 20
	}
	i.textInput.Width = usable
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
	i.textInput.CursorEnd()
}

// Commit stores the current value in the history and clears the input
func (i *Input) Commit() string {
	value := i.textInput.Value()
	if value != "" && (len(i.history) == 0 || i.history[len(i.history)-1] != value) {
		i.history = append(i.history, value)
	}
	i.historyIndex = -1
	i.currentInput = ""
	i.textInput.SetValue("")
	return value
}

func (i *Input) Previous() {
	if len(i.history) == 0 {
		return
	}
	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.SetValue(i.history[i.historyIndex])
}

func (i *Input) Next() {
	if i.historyIndex == -1 {
		return
	}
	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.SetValue(i.history[i.historyIndex])
		return
	}
	i.historyIndex = -1
	i.SetValue(i.currentInput)
}

func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return cmd
}

func (i *Input) View(width int) string {
	style := styles.InputStyle
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(i.textInput.View())
}
