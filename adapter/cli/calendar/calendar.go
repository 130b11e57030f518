package calendar

import (
	"github.com/spf13/cobra"
)

// Cmd is the calendar command group
var Cmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the external calendar connection",
	Long:  `Inspect the configured calendar provider and reconcile drift.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(reconcileCmd)
}
