package block

import (
	"github.com/spf13/cobra"
)

// Cmd is the block command group
var Cmd = &cobra.Command{
	Use:   "block",
	Short: "Manage time blocks",
	Long:  `Add, edit, list and track the time blocks that make up your day.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(clearCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(skipCmd)
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(resetCmd)
}
