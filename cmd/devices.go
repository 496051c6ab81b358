/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/allbin/go-hci"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached hci devices",
	Long: `List the hci devices reported by "hcitool dev".

The listing runs with the probe timeout. A hung hcitool is handled the same
way as a hung command: the transport service is restarted and the device
count is checked afterwards.

Example usage:
  hcictl devices
  hcictl devices --table`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, logger, closer, err := newController(cmd)
		defer closer.Close()
		if err != nil {
			return err
		}

		devices, err := ctrl.ListDevices(cmd.Context())
		if err != nil {
			return fail(logger, err)
		}

		out := cmd.OutOrStdout()
		if len(devices) == 0 {
			fmt.Fprintln(out, "No hci devices found")
			return nil
		}

		if tableFormat, _ := cmd.Flags().GetBool("table"); tableFormat {
			renderDeviceTable(out, devices)
		} else {
			renderDevices(out, devices)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

const (
	columnKeyInterface = "interface"
	columnKeyAddress   = "address"
)

// renderDeviceTable renders the devices as a bordered table
func renderDeviceTable(w io.Writer, devices []hci.Device) {
	fmt.Fprintf(w, "Found %d hci device(s):\n\n", len(devices))

	columns := []table.Column{
		table.NewColumn(columnKeyInterface, "Interface", 12),
		table.NewColumn(columnKeyAddress, "Address", 20),
	}

	rows := make([]table.Row, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyInterface: d.Interface,
			columnKeyAddress:   d.Address,
		}))
	}

	fmt.Fprintln(w, table.New(columns).WithRows(rows).BorderRounded().View())
}

// renderDevices renders one device per line
func renderDevices(w io.Writer, devices []hci.Device) {
	ifaceStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\n", ifaceStyle.Render(d.Interface), d.Address)
	}
}
