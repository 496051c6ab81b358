/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/allbin/go-hci"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// namesCmd represents the names command
var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Show the known HCI command and event names",
	Long: `Show the name tables used to label commands and events.

Command names can be used in place of an opcode with "send" and in the
console. Opcodes are shown in hcitool addressing, with the group field in
the high byte and the command field in the low byte.

Example usage:
  hcictl names
  hcictl names --events`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		events, _ := cmd.Flags().GetBool("events")
		if events {
			renderEventNames(cmd.OutOrStdout(), hci.DefaultEventTable())
			return
		}
		renderCommandNames(cmd.OutOrStdout(), hci.DefaultCommandTable())
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)

	namesCmd.Flags().BoolP("events", "e", false, "Show event names instead of command names")
}

const (
	columnKeyCode  = "code"
	columnKeyGroup = "group"
	columnKeySub   = "sub"
	columnKeyName  = "name"
)

func renderCommandNames(w io.Writer, commands *hci.CommandTable) {
	columns := []table.Column{
		table.NewColumn(columnKeyCode, "Opcode", 8),
		table.NewColumn(columnKeyGroup, "OGF", 6),
		table.NewColumn(columnKeySub, "OCF", 6),
		table.NewColumn(columnKeyName, "Name", 40),
	}

	entries := commands.Entries()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyCode:  e.Opcode.String(),
			columnKeyGroup: fmt.Sprintf("0x%02x", e.Opcode.Group()),
			columnKeySub:   fmt.Sprintf("0x%02x", e.Opcode.Sub()),
			columnKeyName:  e.Name,
		}))
	}

	fmt.Fprintln(w, table.New(columns).WithRows(rows).WithPageSize(len(rows)).BorderRounded().View())
}

func renderEventNames(w io.Writer, events *hci.EventTable) {
	columns := []table.Column{
		table.NewColumn(columnKeyCode, "Code", 6),
		table.NewColumn(columnKeyName, "Name", 40),
	}

	entries := events.Entries()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyCode: fmt.Sprintf("0x%02x", e.Code),
			columnKeyName: e.Name,
		}))
	}

	fmt.Fprintln(w, table.New(columns).WithRows(rows).WithPageSize(len(rows)).BorderRounded().View())
}
