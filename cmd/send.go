/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/allbin/go-hci"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <opcode|name> [bytes...]",
	Short: "Send an HCI command and print the event payload",
	Long: `Send a raw HCI command to the controller and print the payload of the
event it answers with.

The opcode is either a name from "hcictl names" or a 16-bit value in
hcitool addressing (group field in the high byte). Use --packed to give the
opcode in the packed HCI encoding instead. Payload bytes can be written as
"01 02", "0x01 0x02" or "0102".

A command that times out triggers a restart of the transport service. A
response that cannot be decoded, or a controller that does not come back
after the restart, ends the process with exit code 1.

Example usage:
  hcictl send Reset
  hcictl send 0x0303
  hcictl send --packed 0x0c03
  hcictl send VSC_Read_RAM 00 10 20 00 04 --full`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		packed, _ := cmd.Flags().GetBool("packed")
		full, _ := cmd.Flags().GetBool("full")

		ctrl, logger, closer, err := newController(cmd)
		defer closer.Close()
		if err != nil {
			return err
		}

		op, err := resolveOpcode(args[0], packed, ctrl.Commands())
		if err != nil {
			return err
		}
		payload, err := hci.ParsePayload(args[1:]...)
		if err != nil {
			return err
		}

		resp, err := ctrl.Exchange(cmd.Context(), op, payload, ctrl.Config().CommandTimeout)
		if err != nil {
			return fail(logger, err)
		}

		out := cmd.OutOrStdout()
		if full {
			labelStyle := lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99"))
			fmt.Fprintln(out, labelStyle.Render("command:"), resp.Command.String())
			fmt.Fprintln(out, labelStyle.Render("event:  "), resp.Event.String())
			return nil
		}
		fmt.Fprintln(out, formatPayload(resp.Event.Payload))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("packed", "p", false, "Opcode is given in the packed HCI encoding")
	sendCmd.Flags().BoolP("full", "f", false, "Print the decoded command and event instead of the payload")
}

// resolveOpcode parses a name or numeric opcode. Packed numeric opcodes are
// re-keyed into hcitool addressing.
func resolveOpcode(arg string, packed bool, commands *hci.CommandTable) (hci.Opcode, error) {
	if !packed {
		return hci.ParseOpcode(arg, commands)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid packed opcode %q", arg)
	}
	return hci.Rekey(uint16(v)), nil
}

// formatPayload renders bytes as space separated lower case hex
func formatPayload(payload []byte) string {
	parts := make([]string, len(payload))
	for i, b := range payload {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}
