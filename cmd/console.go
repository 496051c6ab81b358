/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"io"

	"github.com/allbin/go-hci"
	"github.com/allbin/go-hci/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive HCI command console",
	Long: `Open an interactive console that sends HCI commands and shows each
command/event pair as it completes.

Enter a command name or opcode followed by payload bytes, for example
"Read_BD_ADDR" or "VSC_Read_RAM 00 10 20 00 04". The status bar follows the
controller through timeouts and transport restarts. A fatal failure closes
the console and exits with code 1.

Logs are written to --log-file only while the console is open.

Example usage:
  hcictl console
  hcictl console -i hci1 --log-file /tmp/hcictl.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		states := make(chan hci.State, 16)
		stateHook := func(s hci.State) {
			select {
			case states <- s:
			default:
			}
		}

		// stderr belongs to the alt screen while the console runs
		logger, closer := newLogger(io.Discard)
		defer closer.Close()

		ctrl, err := hci.New(controllerOptions(logger, hci.WithStateHook(stateHook))...)
		if err != nil {
			return err
		}
		if err := ctrl.Connect(); err != nil {
			return err
		}

		cfg := ctrl.Config()
		m := models.NewConsoleModel(ctrl, models.ConsoleOptions{
			Interface: cfg.Interface,
			Service:   cfg.ServiceName,
			Commands:  ctrl.Commands(),
			Timeout:   cfg.CommandTimeout,
			States:    states,
		})
		defer m.Cancel()

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return err
		}
		if err := m.Err(); err != nil {
			return fail(logger, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
