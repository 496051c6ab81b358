package hci

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Runner executes an external tool and returns its combined output. Run must
// return promptly once ctx is cancelled; a runner that does not is abandoned
// by the supervisor after a short grace period.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (string, error)
}

// ExecRunner runs invocations on the local host. Each invocation gets its own
// process group so that a hung hcitool and anything it spawned can be killed
// together when ctx is cancelled.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the kill
	WaitDelay time.Duration
}

// Run executes inv and returns its combined stdout and stderr. A non-zero
// exit status is returned as an error alongside whatever output was captured.
func (r ExecRunner) Run(ctx context.Context, inv Invocation) (string, error) {
	if len(inv.Argv) == 0 {
		return "", errors.New("empty invocation")
	}

	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = time.Second
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: %v", ErrToolNotAvailable, err)
		}
		return string(out), err
	}
	return string(out), nil
}

// IsToolAvailable checks if tool is available in PATH
func IsToolAvailable(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

// runningAsRoot reports whether the effective uid is 0
func runningAsRoot() bool {
	return unix.Geteuid() == 0
}
