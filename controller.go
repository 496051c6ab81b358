package hci

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Controller sends HCI commands to a single controller through hcitool
type Controller struct {
	config     Config
	supervisor *Supervisor
	codec      Codec
	log        zerolog.Logger
}

// New creates a Controller. Options are applied on top of DefaultConfig.
func New(opts ...Option) (*Controller, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	if config.Commands == nil {
		config.Commands = DefaultCommandTable()
	}
	if config.Events == nil {
		config.Events = DefaultEventTable()
	}
	if config.Codec == nil {
		config.Codec = NewTextCodec(config.Commands, config.Events, config.Logger)
	}

	return &Controller{
		config:     config,
		supervisor: NewSupervisor(config),
		codec:      config.Codec,
		log:        config.Logger,
	}, nil
}

// Config returns the effective configuration
func (c *Controller) Config() Config {
	return c.config
}

// Commands returns the command name table
func (c *Controller) Commands() *CommandTable {
	return c.config.Commands
}

// Events returns the event name table
func (c *Controller) Events() *EventTable {
	return c.config.Events
}

// Connect checks that the controller is usable. It fails with ErrNoInterface
// when no interface identifier has been configured.
func (c *Controller) Connect() error {
	if c.config.Interface == "" {
		c.log.Warn().Msg("no hci identifier is set")
		return ErrNoInterface
	}
	return nil
}

// SendCommand sends an HCI command with the configured default timeout and
// returns the payload of the event the controller answered with.
func (c *Controller) SendCommand(ctx context.Context, op Opcode, payload []byte) ([]byte, error) {
	return c.SendCommandTimeout(ctx, op, payload, c.config.CommandTimeout)
}

// SendCommandTimeout is SendCommand with an explicit timeout
func (c *Controller) SendCommandTimeout(ctx context.Context, op Opcode, payload []byte, timeout time.Duration) ([]byte, error) {
	resp, err := c.Exchange(ctx, op, payload, timeout)
	if err != nil {
		return nil, err
	}
	return resp.Event.Payload, nil
}

// Exchange sends an HCI command and returns the full decoded command/event
// pair. Errors for which IsFatal is true must not be recovered from.
func (c *Controller) Exchange(ctx context.Context, op Opcode, payload []byte, timeout time.Duration) (*Response, error) {
	inv, err := FormatCommand(c.config.Tool, c.config.Interface, op, bytes.Clone(payload))
	if err != nil {
		c.log.Warn().Err(err).Msg("no hci identifier is set")
		return nil, err
	}

	out, err := c.supervisor.Run(ctx, inv, timeout)
	if err != nil {
		switch {
		case IsFatal(err):
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrRecoveryInProgress):
			c.log.Warn().Err(err).Str("cmd", inv.String()).Msg("command not completed")
		default:
			critical(&c.log).Err(err).Str("cmd", inv.String()).Msg("command failed")
		}
		return nil, err
	}

	if !c.codec.Valid(out) {
		critical(&c.log).Str("cmd", inv.String()).Str("response", out).Msg("command failed")
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, inv)
	}

	resp, err := c.codec.Decode(out)
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("cmd", inv.String()).Hex("payload", resp.Event.Payload).Msg("command completed")
	return resp, nil
}

// ListDevices returns the hci devices attached to the host. An empty slice
// means none were found.
func (c *Controller) ListDevices(ctx context.Context) ([]Device, error) {
	out, err := c.supervisor.Run(ctx, DeviceListInvocation(c.config.Tool), c.config.ProbeTimeout)
	if err != nil {
		return nil, err
	}

	devices := ParseDevices(out)
	switch len(devices) {
	case 0:
		c.log.Info().Msg("no connected hci device found")
		return []Device{}, nil
	case 1:
		c.log.Info().Str("device", devices[0].Label).Msg("found 1 hci device")
	default:
		c.log.Info().Int("count", len(devices)).Msg("found multiple hci devices")
	}
	return devices, nil
}

// RestartTransport restarts the transport service using the same delayed
// restart as crash recovery.
func (c *Controller) RestartTransport() error {
	return c.supervisor.RestartTransport()
}
