package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/allbin/go-hci"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	mu    sync.Mutex
	calls []string
	reply func(inv hci.Invocation) (string, error)
}

func (r *scriptedRunner) Run(_ context.Context, inv hci.Invocation) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, inv.String())
	r.mu.Unlock()
	return r.reply(inv)
}

// runCLI executes the root command with args against runner and traps exit
func runCLI(t *testing.T, runner hci.Runner, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	code = -1
	origExit, origOptions := exit, baseOptions
	exit = func(c int) { code = c }
	baseOptions = []hci.Option{hci.WithRunner(runner), hci.WithSleep(func(time.Duration) {})}
	t.Cleanup(func() {
		exit, baseOptions = origExit, origOptions
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--log-json", "--sanity-sleep", "0s", "--restart-delay", "0s"}, args...))

	Execute()
	return out.String(), errOut.String(), code
}

func commandComplete(status ...byte) string {
	var b strings.Builder
	b.WriteString("< HCI Command: ogf 0x03, ocf 0x0003, plen 0\n")
	fmt.Fprintf(&b, "> HCI Event: 0x0e plen %d\n ", len(status))
	for _, v := range status {
		fmt.Fprintf(&b, " %02X", v)
	}
	b.WriteString(" \n")
	return b.String()
}

func TestSendPrintsEventPayload(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		return commandComplete(0x01, 0x03, 0x0c, 0x00), nil
	}}

	out, _, code := runCLI(t, runner, "send", "Reset")
	assert.Equal(t, -1, code)
	assert.Equal(t, "01 03 0c 00\n", out)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "hcitool -i hci0 cmd 0x3 0x3", runner.calls[0])
}

func TestSendCorruptResponseExits(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		return "< HCI Command: ogf 0x03, ocf 0x0003, plen 0\n> HCI Event: 0x0e plen 4\n  01 03 \n", nil
	}}

	_, stderr, code := runCLI(t, runner, "send", "Reset")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unrecoverable hci failure")
}

func TestSendInvalidOpcode(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		t.Fatal("runner must not be called")
		return "", nil
	}}

	_, _, code := runCLI(t, runner, "send", "Not_A_Command")
	assert.Equal(t, 1, code)
}

func TestDevicesLists(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		return "Devices:\n\thci0\tB8:27:EB:12:34:56\n", nil
	}}

	out, _, code := runCLI(t, runner, "devices", "--table=false")
	assert.Equal(t, -1, code)
	assert.Contains(t, out, "hci0")
	assert.Contains(t, out, "B8:27:EB:12:34:56")
	assert.Equal(t, []string{"hcitool dev"}, runner.calls)
}

func TestDevicesNoneFound(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		return "Devices:\n", nil
	}}

	out, _, code := runCLI(t, runner, "devices")
	assert.Equal(t, -1, code)
	assert.Contains(t, out, "No hci devices found")
}

func TestRepeatedExecuteGetsFreshContext(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		return "Devices:\n\thci0\tB8:27:EB:12:34:56\n", nil
	}}

	for i := 0; i < 3; i++ {
		out, stderr, code := runCLI(t, runner, "devices")
		assert.Equal(t, -1, code, "run %d: %s", i, stderr)
		assert.Contains(t, out, "hci0", "run %d", i)
	}
	assert.Len(t, runner.calls, 3)
}

func TestSanityCheckDefaultsOff(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("sanity-check")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestNamesTable(t *testing.T) {
	out, _, code := runCLI(t, &scriptedRunner{}, "names")
	assert.Equal(t, -1, code)
	assert.Contains(t, out, "COMND Reset")
	assert.Contains(t, out, "0x0303")
}

func TestResolveOpcode(t *testing.T) {
	table := hci.DefaultCommandTable()

	op, err := resolveOpcode("0x0c03", true, table)
	require.NoError(t, err)
	assert.Equal(t, hci.Opcode(0x0303), op)

	op, err = resolveOpcode("Reset", false, table)
	require.NoError(t, err)
	assert.Equal(t, hci.Opcode(0x0303), op)

	_, err = resolveOpcode("Reset", true, table)
	assert.Error(t, err)
}

func TestFormatPayload(t *testing.T) {
	assert.Equal(t, "", formatPayload(nil))
	assert.Equal(t, "00 ab", formatPayload([]byte{0x00, 0xab}))
}

func TestFailOnlyLogsFatal(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := fail(logger, hci.ErrControllerCrashed)
	assert.ErrorIs(t, err, hci.ErrControllerCrashed)
	assert.Empty(t, buf.String())

	err = fail(logger, hci.ErrRecoveryFailed)
	assert.ErrorIs(t, err, hci.ErrRecoveryFailed)
	assert.Contains(t, buf.String(), `"level":"fatal"`)
}

func TestRestartRunsSystemctl(t *testing.T) {
	runner := &scriptedRunner{reply: func(hci.Invocation) (string, error) {
		return "", nil
	}}

	out, _, code := runCLI(t, runner, "restart")
	assert.Equal(t, -1, code)
	assert.Contains(t, out, "Transport service restarted")
	require.Len(t, runner.calls, 1)
	assert.True(t, strings.HasSuffix(runner.calls[0], "systemctl restart hciuart.service"), runner.calls[0])
}
