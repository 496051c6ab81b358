package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Log is a scrolling view of formatted exchange lines
type Log struct {
	viewport viewport.Model
	lines    []string
}

func NewLog(width, height int) *Log {
	return &Log{
		viewport: viewport.New(width, height),
		lines:    make([]string, 0),
	}
}

func (l *Log) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

func (l *Log) Append(lines ...string) {
	l.lines = append(l.lines, lines...)
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

func (l *Log) Lines() []string {
	return l.lines
}

func (l *Log) Clear() {
	l.lines = make([]string, 0)
	l.viewport.SetContent("")
}

func (l *Log) PageUp() {
	l.viewport.ViewUp()
}

func (l *Log) PageDown() {
	l.viewport.ViewDown()
}

func (l *Log) Update(msg tea.Msg) tea.Cmd {
	// keys belong to the console, only resizes reach the viewport
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		var cmd tea.Cmd
		l.viewport, cmd = l.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (l *Log) View() string {
	return l.viewport.View()
}
