/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/allbin/go-hci"
	"github.com/spf13/cobra"
)

// restartCmd represents the restart command
var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the HCI transport service",
	Long: `Restart the transport service that attaches the controller to the host
(hciuart.service by default). This can recover a controller that has
stopped answering without rebooting the host.

The restart waits for the restart delay first, the same way crash recovery
does. sudo is used when not running as root.

Example usage:
  hcictl restart
  hcictl restart --service my-hciattach.service --restart-delay 0s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, closer, err := newController(cmd)
		defer closer.Close()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Restarting %s\n", ctrl.Config().ServiceName)

		if err := ctrl.RestartTransport(); err != nil {
			if errors.Is(err, hci.ErrRecoveryInProgress) {
				fmt.Fprintln(cmd.ErrOrStderr(), "A recovery is already running")
			}
			return fail(logger, err)
		}

		fmt.Fprintln(out, "Transport service restarted")
		fmt.Fprintln(out, "\nUse 'hcictl devices' to see the attached controllers")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
}
