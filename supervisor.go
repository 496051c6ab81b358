package hci

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is a step of a supervised call. Nothing persists between calls; every
// call starts at StateIdle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateTimedOut
	StateRecovering
	StateDeviceConfirmed
	StateDeviceLost
	StateRecoverySkipped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateTimedOut:
		return "timed-out"
	case StateRecovering:
		return "recovering"
	case StateDeviceConfirmed:
		return "device-confirmed"
	case StateDeviceLost:
		return "device-lost"
	case StateRecoverySkipped:
		return "recovery-skipped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var errNoResponse = errors.New("no response within timeout")

// defaultReapGrace bounds the wait for a cancelled runner to return
const defaultReapGrace = time.Second

type runResult struct {
	out string
	err error
}

// Supervisor runs tool invocations under a hard timeout and restarts the
// transport service when the controller stops responding.
type Supervisor struct {
	runner       Runner
	tool         string
	service      string
	probeTimeout time.Duration
	restartDelay time.Duration
	sanityCheck  bool
	sanitySleep  time.Duration
	sudo         bool
	sleep        func(time.Duration)
	onState      func(State)
	log          zerolog.Logger

	recovering atomic.Bool
	reapGrace  time.Duration
}

// NewSupervisor creates a supervisor from cfg. A nil cfg.Runner selects
// ExecRunner.
func NewSupervisor(cfg Config) *Supervisor {
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sudo := !runningAsRoot()
	if cfg.UseSudo != nil {
		sudo = *cfg.UseSudo
	}

	return &Supervisor{
		runner:       runner,
		tool:         cfg.Tool,
		service:      cfg.ServiceName,
		probeTimeout: cfg.ProbeTimeout,
		restartDelay: cfg.RestartDelay,
		sanityCheck:  cfg.SanityCheckOnReboot,
		sanitySleep:  cfg.SanityCheckSleep,
		sudo:         sudo,
		sleep:        sleep,
		onState:      cfg.OnState,
		log:          cfg.Logger,
		reapGrace:    defaultReapGrace,
	}
}

// Run executes inv and returns its output if it arrives within timeout.
//
// A call that does not answer in time is treated as a controller crash: the
// hung process is killed, the transport service is restarted and, if enabled,
// the device count is verified. Run then returns ErrControllerCrashed; the
// command is not retried. ErrRecoveryFailed is returned if the device did not
// come back.
func (s *Supervisor) Run(ctx context.Context, inv Invocation, timeout time.Duration) (string, error) {
	if s.recovering.Load() {
		return "", ErrRecoveryInProgress
	}

	log := s.log.With().Str("call_id", uuid.NewString()).Str("cmd", inv.String()).Logger()
	s.setState(StateIdle)
	log.Debug().Dur("timeout", timeout).Msg("run cmd")

	s.setState(StateRunning)
	out, err := s.runBounded(ctx, &log, inv, timeout)
	switch {
	case err == nil:
		s.setState(StateSucceeded)
		log.Debug().Str("response", out).Msg("cmd completed")
		return out, nil
	case errors.Is(err, errNoResponse):
		s.setState(StateTimedOut)
		log.Warn().Msg("hci device crashed")
		return "", s.recover(&log)
	default:
		return "", err
	}
}

// runBounded launches inv in its own goroutine and waits at most timeout for
// its result. A cancelled runner is given reapGrace to return before it is
// abandoned.
func (s *Supervisor) runBounded(ctx context.Context, log *zerolog.Logger, inv Invocation, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan runResult, 1)
	go func() {
		out, err := s.runner.Run(callCtx, inv)
		results <- runResult{out: out, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-results:
		if r.err != nil {
			if r.out == "" {
				return "", r.err
			}
			log.Warn().Err(r.err).Msg("tool exited with error")
		}
		return r.out, nil
	case <-timer.C:
		cancel()
		s.reap(log, results)
		return "", errNoResponse
	case <-ctx.Done():
		cancel()
		s.reap(log, results)
		return "", ctx.Err()
	}
}

// reap waits up to reapGrace for a cancelled runner to deliver its result.
// A runner that ignores cancellation is abandoned; its late result lands in
// the buffered channel.
func (s *Supervisor) reap(log *zerolog.Logger, results <-chan runResult) {
	grace := time.NewTimer(s.reapGrace)
	defer grace.Stop()

	select {
	case <-results:
	case <-grace.C:
		log.Warn().Dur("grace", s.reapGrace).Msg("runner ignored cancellation, abandoning it")
	}
}

// recover restarts the transport service after a crash. It is strictly
// sequential and cannot nest: the device probes it issues have no recovery
// path of their own.
func (s *Supervisor) recover(log *zerolog.Logger) error {
	if !s.recovering.CompareAndSwap(false, true) {
		return ErrRecoveryInProgress
	}
	defer s.recovering.Store(false)

	s.setState(StateRecovering)
	log.Info().Msg("reattach device, this will take a few seconds")

	sanity := s.sanityCheck
	before := 0
	if sanity {
		n, err := s.probe()
		if err != nil {
			log.Warn().Err(err).Msg("device probe failed, skipping reattach check")
			sanity = false
		}
		before = n
	}

	if err := s.restartAfterDelay(log); err != nil {
		log.Error().Err(err).Str("service", s.service).Msg("transport restart failed")
	}

	if !sanity {
		s.setState(StateRecoverySkipped)
		return ErrControllerCrashed
	}

	log.Info().Msg("check if the device has been reattached, this will take some seconds")
	s.sleep(s.sanitySleep)

	after, err := s.probe()
	if err != nil || after != before {
		s.setState(StateDeviceLost)
		critical(log).Err(err).Int("before", before).Int("after", after).
			Msg("could not reboot hci controller")
		return fmt.Errorf("%w: device probe returned %d tokens, expected %d", ErrRecoveryFailed, after, before)
	}

	s.setState(StateDeviceConfirmed)
	log.Info().Msg("device is reattached")
	return ErrControllerCrashed
}

// probe returns the number of tokens printed by the device listing, which is
// twice the number of devices plus one for the header.
func (s *Supervisor) probe() (int, error) {
	inv := DeviceListInvocation(s.tool)
	log := s.log.With().Str("cmd", inv.String()).Logger()

	out, err := s.runBounded(context.Background(), &log, inv, s.probeTimeout)
	if errors.Is(err, errNoResponse) {
		return 0, ErrProbeTimeout
	}
	if err != nil {
		return 0, err
	}
	return len(strings.Fields(out)), nil
}

// RestartTransport restarts the transport service after the configured
// settle delay. It fails fast if a recovery is already running.
func (s *Supervisor) RestartTransport() error {
	if !s.recovering.CompareAndSwap(false, true) {
		return ErrRecoveryInProgress
	}
	defer s.recovering.Store(false)

	return s.restartAfterDelay(&s.log)
}

// restartAfterDelay runs the delayed restart in its own goroutine and waits
// for it without a timeout. This is the one wait in the package that cannot
// be cancelled: there is no way to continue if the restart never finishes.
func (s *Supervisor) restartAfterDelay(log *zerolog.Logger) error {
	inv := s.restartInvocation()
	log.Info().Str("cmd", inv.String()).Dur("delay", s.restartDelay).Msg("restarting transport service")

	done := make(chan error, 1)
	go func() {
		s.sleep(s.restartDelay)
		_, err := s.runner.Run(context.Background(), inv)
		done <- err
	}()

	return <-done
}

func (s *Supervisor) restartInvocation() Invocation {
	argv := []string{"systemctl", "restart", s.service}
	if s.sudo {
		// -n fails instead of prompting inside the uncancellable restart wait
		argv = append([]string{"sudo", "-n"}, argv...)
	}
	return Invocation{Argv: argv}
}

func (s *Supervisor) setState(state State) {
	if s.onState != nil {
		s.onState(state)
	}
}
