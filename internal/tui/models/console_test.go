package models

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/allbin/go-hci"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exchangeCall struct {
	op      hci.Opcode
	payload []byte
}

type fakeExchanger struct {
	mu    sync.Mutex
	calls []exchangeCall
	err   error
}

func (f *fakeExchanger) Exchange(_ context.Context, op hci.Opcode, payload []byte, _ time.Duration) (*hci.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, exchangeCall{op: op, payload: payload})
	if f.err != nil {
		return nil, f.err
	}
	return &hci.Response{
		Command: hci.Command{Opcode: op, Payload: payload},
		Event: hci.Event{
			Code:           0x0e,
			Name:           "EVENT Command_Complete",
			DeclaredLength: 4,
			Payload:        []byte{0x01, 0x03, 0x0c, 0x00},
		},
	}, nil
}

func newTestConsole(t *testing.T, ex Exchanger) *ConsoleModel {
	t.Helper()
	m := NewConsoleModel(ex, ConsoleOptions{Interface: "hci0", Service: "hciuart.service"})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func typeLine(m *ConsoleModel, line string) tea.Cmd {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestConsoleSendsParsedCommand(t *testing.T) {
	ex := &fakeExchanger{}
	m := newTestConsole(t, ex)

	cmd := typeLine(m, "VSC_Read_RAM 00 10")
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())

	msg := cmd()
	_, cmd = m.Update(msg)
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())

	require.Len(t, ex.calls, 1)
	assert.Equal(t, hci.Opcode(0x3f4d), ex.calls[0].op)
	assert.Equal(t, []byte{0x00, 0x10}, ex.calls[0].payload)
	require.Len(t, m.Lines(), 2)
	assert.Contains(t, m.Lines()[1], "EVENT Command_Complete")
}

func TestConsoleRejectsBadInput(t *testing.T) {
	ex := &fakeExchanger{}
	m := newTestConsole(t, ex)

	cmd := typeLine(m, "Not_A_Command")
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.Empty(t, ex.calls)
	require.Len(t, m.Lines(), 1)
	assert.Contains(t, m.Lines()[0], "Not_A_Command")
}

func TestConsoleIgnoresSendWhileBusy(t *testing.T) {
	ex := &fakeExchanger{}
	m := newTestConsole(t, ex)

	require.NotNil(t, typeLine(m, "Reset"))
	assert.Nil(t, typeLine(m, "Reset"))
}

func TestConsoleQuitsOnFatalError(t *testing.T) {
	ex := &fakeExchanger{err: fmt.Errorf("%w: device count changed", hci.ErrRecoveryFailed)}
	m := newTestConsole(t, ex)

	cmd := typeLine(m, "Reset")
	require.NotNil(t, cmd)

	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.ErrorIs(t, m.Err(), hci.ErrRecoveryFailed)
}

func TestConsoleKeepsRunningOnCrash(t *testing.T) {
	ex := &fakeExchanger{err: hci.ErrControllerCrashed}
	m := newTestConsole(t, ex)

	cmd := typeLine(m, "Reset")
	_, cmd = m.Update(cmd())
	assert.Nil(t, cmd)
	assert.NoError(t, m.Err())
}

func TestConsoleFollowsStateChanges(t *testing.T) {
	states := make(chan hci.State, 1)
	m := NewConsoleModel(&fakeExchanger{}, ConsoleOptions{States: states})

	cmd := m.Init()
	require.NotNil(t, cmd)
	states <- hci.StateRecovering

	_, next := m.Update(cmd())
	assert.Equal(t, hci.StateRecovering, m.State())
	assert.NotNil(t, next)
}

func TestConsoleViewBeforeResize(t *testing.T) {
	m := NewConsoleModel(&fakeExchanger{}, ConsoleOptions{})
	assert.Equal(t, "Initializing...", m.View())
	assert.Nil(t, m.Init())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Contains(t, m.View(), "HCI Console")
}
