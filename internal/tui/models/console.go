package models

import (
	"context"
	"fmt"
	"time"

	"github.com/allbin/go-hci"
	"github.com/allbin/go-hci/internal/tui/components"
	"github.com/allbin/go-hci/internal/tui/keys"
	"github.com/allbin/go-hci/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Exchanger sends one HCI command and returns the decoded response
type Exchanger interface {
	Exchange(ctx context.Context, op hci.Opcode, payload []byte, timeout time.Duration) (*hci.Response, error)
}

// ConsoleModel is an interactive prompt that sends HCI commands and shows
// each command/event pair as it completes.
type ConsoleModel struct {
	exchanger Exchanger
	commands  *hci.CommandTable
	timeout   time.Duration
	states    <-chan hci.State

	log       *components.Log
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConsoleKeys

	ctx    context.Context
	cancel context.CancelFunc

	busy  bool
	ready bool
	fatal error
	width int
	now   func() time.Time
}

// ConsoleOptions configures a ConsoleModel
type ConsoleOptions struct {
	Interface string
	Service   string
	Commands  *hci.CommandTable
	Timeout   time.Duration
	// States receives supervisor state changes, optional
	States <-chan hci.State
}

// NewConsoleModel returns a console sending commands through exchanger.
// Zero options fall back to the default command table and timeout.
func NewConsoleModel(exchanger Exchanger, opts ConsoleOptions) *ConsoleModel {
	ctx, cancel := context.WithCancel(context.Background())

	commands := opts.Commands
	if commands == nil {
		commands = hci.DefaultCommandTable()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = hci.DefaultCommandTimeout
	}

	return &ConsoleModel{
		exchanger: exchanger,
		commands:  commands,
		timeout:   timeout,
		states:    opts.States,
		log:       components.NewLog(0, 0),
		statusBar: components.NewStatusBar("HCI Console", opts.Interface, opts.Service),
		input:     components.NewInput("Reset, VSC_Read_RAM 00 10 20 00 04, 0x0c03 ..."),
		help:      help.New(),
		keys:      keys.NewConsoleKeys(),
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
}

// Err returns the fatal error that ended the session, if any
func (m *ConsoleModel) Err() error {
	return m.fatal
}

// Busy reports whether an exchange is in flight
func (m *ConsoleModel) Busy() bool {
	return m.busy
}

// Lines returns the formatted log lines shown so far
func (m *ConsoleModel) Lines() []string {
	return m.log.Lines()
}

// State returns the last supervisor state shown in the status bar
func (m *ConsoleModel) State() hci.State {
	return m.statusBar.State()
}

// Cancel aborts an exchange in flight
func (m *ConsoleModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *ConsoleModel) Init() tea.Cmd {
	return m.waitForState()
}

func (m *ConsoleModel) waitForState() tea.Cmd {
	if m.states == nil {
		return nil
	}
	states := m.states
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return components.StateMsg{State: state}
	}
}

func (m *ConsoleModel) exchange(op hci.Opcode, payload []byte) tea.Cmd {
	ctx, exchanger, timeout, now := m.ctx, m.exchanger, m.timeout, m.now
	return func() tea.Msg {
		resp, err := exchanger.Exchange(ctx, op, payload, timeout)
		return components.ExchangeMsg{
			Timestamp: now(),
			Opcode:    op,
			Payload:   payload,
			Response:  resp,
			Err:       err,
		}
	}
}

func (m *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// input box(3) + status bar(1) + help(1)
		m.log.SetSize(msg.Width, max(msg.Height-5, 1))
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case components.StateMsg:
		m.statusBar.SetState(msg.State)
		return m, m.waitForState()

	case components.ExchangeMsg:
		m.busy = false
		m.statusBar.Record(msg.Err)
		m.log.Append(components.FormatExchange(msg, m.commands)...)
		if hci.IsFatal(msg.Err) {
			m.fatal = msg.Err
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.log.Clear()
			return m, nil
		case key.Matches(msg, m.keys.History):
			m.input.Previous()
			return m, nil
		case key.Matches(msg, m.keys.Forward):
			m.input.Next()
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.log.PageUp()
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.log.PageDown()
			return m, nil
		case key.Matches(msg, m.keys.Send):
			return m, m.submit()
		}
	}

	return m, m.input.Update(msg)
}

// submit parses the input line and starts an exchange. Only one exchange
// runs at a time.
func (m *ConsoleModel) submit() tea.Cmd {
	if m.busy || m.input.Value() == "" {
		return nil
	}

	line := m.input.Commit()
	op, payload, err := hci.ParseCommandLine(line, m.commands)
	if err != nil {
		m.log.Append(styles.ErrorStyle.Render(fmt.Sprintf("%s: %v", line, err)))
		return nil
	}

	m.busy = true
	m.statusBar.SetState(hci.StateRunning)
	return m.exchange(op, payload)
}

func (m *ConsoleModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		styles.ContentBorderStyle.Width(m.width).Render(m.log.View()),
		m.input.View(m.width),
		styles.HelpStyle.Render(m.help.View(m.keys)),
	)
}
