package hci

import (
	"time"

	"github.com/rs/zerolog"
)

// Default values mirror the behaviour of the hciuart transport on a Raspberry Pi
const (
	DefaultTool             = "hcitool"
	DefaultServiceName      = "hciuart.service"
	DefaultCommandTimeout   = 1 * time.Second
	DefaultProbeTimeout     = 1 * time.Second
	DefaultRestartDelay     = 5 * time.Second // restarting immediately after a crash fails
	DefaultSanityCheckSleep = 8 * time.Second
)

// Config holds the configuration for a Controller
type Config struct {
	Interface           string        // hci interface, e.g. "hci0"
	Tool                string        // path or name of the hcitool binary
	ServiceName         string        // systemd unit restarted on controller crash
	CommandTimeout      time.Duration // default bound for SendCommand
	ProbeTimeout        time.Duration // bound for device-count probes during recovery
	RestartDelay        time.Duration // settle delay before the service restart
	SanityCheckOnReboot bool          // compare device counts around the restart
	SanityCheckSleep    time.Duration // wait before re-probing after the restart
	UseSudo             *bool         // nil: decide from the effective uid

	Logger   zerolog.Logger
	Runner   Runner
	Codec    Codec
	Commands *CommandTable
	Events   *EventTable
	Sleep    func(time.Duration)
	OnState  func(State)
}

// Option is a functional option for configuring a Controller
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Tool:             DefaultTool,
		ServiceName:      DefaultServiceName,
		CommandTimeout:   DefaultCommandTimeout,
		ProbeTimeout:     DefaultProbeTimeout,
		RestartDelay:     DefaultRestartDelay,
		SanityCheckSleep: DefaultSanityCheckSleep,
		Logger:           zerolog.Nop(),
		Sleep:            time.Sleep,
	}
}

// WithInterface sets the hci interface identifier
func WithInterface(iface string) Option {
	return func(c *Config) error {
		c.Interface = iface
		return nil
	}
}

// WithTool sets the hcitool binary
func WithTool(tool string) Option {
	return func(c *Config) error {
		if tool == "" {
			return ErrToolNotAvailable
		}
		c.Tool = tool
		return nil
	}
}

// WithServiceName sets the transport service restarted during recovery
func WithServiceName(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return ErrInvalidConfig
		}
		c.ServiceName = name
		return nil
	}
}

// WithCommandTimeout sets the default timeout for SendCommand
func WithCommandTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.CommandTimeout = timeout
		return nil
	}
}

// WithProbeTimeout sets the timeout for device-count probes
func WithProbeTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.ProbeTimeout = timeout
		return nil
	}
}

// WithRestartDelay sets the delay before the transport service is restarted
func WithRestartDelay(delay time.Duration) Option {
	return func(c *Config) error {
		if delay < 0 {
			return ErrInvalidConfig
		}
		c.RestartDelay = delay
		return nil
	}
}

// WithSanityCheck enables device re-verification after a restart
func WithSanityCheck(enabled bool, sleep time.Duration) Option {
	return func(c *Config) error {
		if sleep < 0 {
			return ErrInvalidConfig
		}
		c.SanityCheckOnReboot = enabled
		c.SanityCheckSleep = sleep
		return nil
	}
}

// WithSudo forces or suppresses the sudo prefix on the restart command
func WithSudo(enabled bool) Option {
	return func(c *Config) error {
		c.UseSudo = &enabled
		return nil
	}
}

// WithLogger sets the logger used for all diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithRunner replaces the process runner
func WithRunner(r Runner) Option {
	return func(c *Config) error {
		if r == nil {
			return ErrInvalidConfig
		}
		c.Runner = r
		return nil
	}
}

// WithCodec replaces the response codec
func WithCodec(codec Codec) Option {
	return func(c *Config) error {
		if codec == nil {
			return ErrInvalidConfig
		}
		c.Codec = codec
		return nil
	}
}

// WithNameTables sets the command and event name tables
func WithNameTables(commands *CommandTable, events *EventTable) Option {
	return func(c *Config) error {
		if commands == nil || events == nil {
			return ErrInvalidConfig
		}
		c.Commands = commands
		c.Events = events
		return nil
	}
}

// WithSleep replaces the function used for settle delays
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Config) error {
		if sleep == nil {
			return ErrInvalidConfig
		}
		c.Sleep = sleep
		return nil
	}
}

// WithStateHook registers a callback invoked on every supervisor state change
func WithStateHook(hook func(State)) Option {
	return func(c *Config) error {
		c.OnState = hook
		return nil
	}
}
