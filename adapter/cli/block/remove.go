package block

import (
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <block-id>",
	Short: "Remove a time block",
	Long: `Remove a block from the schedule. A linked calendar event is deleted
best-effort; the block is removed locally either way.`,
	Aliases: []string{"rm", "delete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		blockID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid block ID: %w", err)
		}

		if err := app.Schedule.DeleteBlock(cmd.Context(), blockID); err != nil {
			return fmt.Errorf("failed to remove block: %w", err)
		}

		fmt.Println("Block removed.")
		return nil
	},
}
