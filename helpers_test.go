package hci

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// recorder collects runner calls and sleeps in the order they happen
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) sleep(d time.Duration) {
	r.add("sleep %s", d)
}

// fakeRunner dispatches invocations to handle and records each call
type fakeRunner struct {
	rec    *recorder
	handle func(ctx context.Context, inv Invocation) (string, error)
}

func (f *fakeRunner) Run(ctx context.Context, inv Invocation) (string, error) {
	f.rec.add("run %s", inv)
	return f.handle(ctx, inv)
}

// hang blocks until the supervisor gives up on the call
func hang(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// hcitoolOutput renders a command/event exchange the way hcitool prints it
func hcitoolOutput(op Opcode, cmdPayload []byte, code uint8, evtPayload []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "< HCI Command: ogf 0x%02x, ocf 0x%04x, plen %d\n", op.Group(), op.Sub(), len(cmdPayload))
	writePayload(&b, cmdPayload)
	fmt.Fprintf(&b, "> HCI Event: 0x%02x plen %d\n", code, len(evtPayload))
	writePayload(&b, evtPayload)
	return b.String()
}

func writePayload(b *strings.Builder, payload []byte) {
	for i := 0; i < len(payload); i += 20 {
		end := min(i+20, len(payload))
		b.WriteString(" ")
		for _, v := range payload[i:end] {
			fmt.Fprintf(b, " %02X", v)
		}
		b.WriteString(" \n")
	}
}

// emulateHcitool answers a "cmd" invocation with a Command_Complete event
// echoing the command payload, like a loopback controller would.
func emulateHcitool(inv Invocation) (string, error) {
	if len(inv.Argv) < 6 || inv.Argv[3] != "cmd" {
		return "", fmt.Errorf("unexpected invocation %q", inv)
	}
	group, err := strconv.ParseUint(strings.TrimPrefix(inv.Argv[4], "0x"), 16, 8)
	if err != nil {
		return "", err
	}
	sub, err := strconv.ParseUint(strings.TrimPrefix(inv.Argv[5], "0x"), 16, 8)
	if err != nil {
		return "", err
	}
	payload := make([]byte, 0, len(inv.Argv)-6)
	for _, arg := range inv.Argv[6:] {
		v, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 8)
		if err != nil {
			return "", err
		}
		payload = append(payload, byte(v))
	}
	return hcitoolOutput(NewOpcode(uint8(group), uint8(sub)), payload, 0x0e, payload), nil
}

func testLogger() (zerolog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return zerolog.New(buf).Level(zerolog.DebugLevel), buf
}

const oneDevice = "Devices:\n\thci0\tB8:27:EB:12:34:56\n"
