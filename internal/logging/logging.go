// Package logging builds the zerolog logger used by hcictl.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	EnvLogLevel     = "HCICTL_LOG_LEVEL"
	EnvLogTimestamp = "HCICTL_LOG_TIMESTAMP"
	EnvLogNoColor   = "HCICTL_LOG_NOCOLOR"
)

// Config describes where and how log output is written
type Config struct {
	Level     string
	JSON      bool
	NoColor   bool
	Timestamp bool
	File      string // optional, rotated by lumberjack
	MaxSizeMB int
	MaxAgeDay int
}

// DefaultConfig logs info and above to stderr with timestamps
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Timestamp: true,
		MaxSizeMB: 10,
		MaxAgeDay: 14,
	}
}

// New builds a logger from cfg after applying environment overrides. The
// returned closer releases the log file, if any.
func New(cfg Config, stderr io.Writer) (zerolog.Logger, io.Closer) {
	applyEnvOverrides(&cfg)

	var console io.Writer = stderr
	if !cfg.JSON {
		console = zerolog.ConsoleWriter{
			Out:        stderr,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}

	out := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSizeMB,
			MaxAge:   cfg.MaxAgeDay,
			Compress: true,
		}
		out = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Str("app", "hcictl").Logger(), closer
}

// ParseLevel maps a level name to a zerolog level
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "critical", "fatal":
		return zerolog.FatalLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func applyEnvOverrides(cfg *Config) {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		if _, ok := ParseLevel(lvl); ok {
			cfg.Level = lvl
		}
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
