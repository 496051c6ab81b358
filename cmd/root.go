/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/allbin/go-hci"
	"github.com/allbin/go-hci/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// exit is replaced in tests
	exit = os.Exit

	// baseOptions are applied to every controller before the settings
	baseOptions []hci.Option
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hcictl",
	Short: "Send HCI commands to a Bluetooth controller through hcitool",
	Long: `hcictl sends raw HCI commands to a Bluetooth controller attached over
UART and decodes the command/event pair that hcitool prints back.

Every command runs with a timeout. When the controller stops answering,
hcictl restarts the transport service (hciuart.service by default) and
checks that the same number of hci devices are attached afterwards. A
controller that does not come back, or a response that cannot be decoded,
is treated as fatal.

Configuration is read from hcictl.yaml in /etc/hcictl or
$HOME/.config/hcictl, from HCICTL_* environment variables and from flags.

Examples:
  hcictl devices
  hcictl send Reset
  hcictl send VSC_Read_RAM 00 10 20 00 04
  hcictl console -i hci1`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// cobra only hands the root context to subcommands without one, so a
	// context left over from an earlier Execute must be replaced
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is /etc/hcictl/hcictl.yaml)")
	flags.StringP("interface", "i", "hci0", "HCI interface identifier")
	flags.String("tool", hci.DefaultTool, "hcitool executable")
	flags.String("service", hci.DefaultServiceName, "transport service restarted on a controller crash")
	flags.Duration("timeout", hci.DefaultCommandTimeout, "command timeout")
	flags.Duration("probe-timeout", hci.DefaultProbeTimeout, "device probe timeout")
	flags.Duration("restart-delay", hci.DefaultRestartDelay, "delay before the transport service is restarted")
	flags.Bool("sanity-check", false, "verify the device count after a restart")
	flags.Duration("sanity-sleep", hci.DefaultSanityCheckSleep, "wait before the device count is verified")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error, critical")
	flags.String("log-file", "", "also write logs to this file, rotated")
	flags.Bool("log-json", false, "write logs as JSON")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("/etc/hcictl")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hcictl"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("hcictl")
	}

	viper.SetEnvPrefix("HCICTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the log-* settings
func newLogger(stderr io.Writer) (zerolog.Logger, io.Closer) {
	cfg := logging.DefaultConfig()
	cfg.Level = viper.GetString("log-level")
	cfg.File = viper.GetString("log-file")
	cfg.JSON = viper.GetBool("log-json")
	return logging.New(cfg, stderr)
}

// controllerOptions maps the settings onto controller options
func controllerOptions(logger zerolog.Logger, extra ...hci.Option) []hci.Option {
	opts := append([]hci.Option{}, baseOptions...)
	opts = append(opts,
		hci.WithLogger(logger),
		hci.WithInterface(viper.GetString("interface")),
		hci.WithTool(viper.GetString("tool")),
		hci.WithServiceName(viper.GetString("service")),
		hci.WithCommandTimeout(viper.GetDuration("timeout")),
		hci.WithProbeTimeout(viper.GetDuration("probe-timeout")),
		hci.WithRestartDelay(viper.GetDuration("restart-delay")),
		hci.WithSanityCheck(viper.GetBool("sanity-check"), viper.GetDuration("sanity-sleep")),
	)
	return append(opts, extra...)
}

// newController builds a controller and its logger. The returned closer must
// be closed once the command is done, also on error.
func newController(cmd *cobra.Command, extra ...hci.Option) (*hci.Controller, zerolog.Logger, io.Closer, error) {
	logger, closer := newLogger(cmd.ErrOrStderr())

	ctrl, err := hci.New(controllerOptions(logger, extra...)...)
	if err != nil {
		return nil, logger, closer, err
	}
	return ctrl, logger, closer, nil
}

// fail logs err at critical level when it must not be recovered from and
// returns it. Execute exits non-zero on any returned error.
func fail(logger zerolog.Logger, err error) error {
	if hci.IsFatal(err) {
		logger.WithLevel(zerolog.FatalLevel).Err(err).Msg("unrecoverable hci failure, exiting")
	}
	return err
}
