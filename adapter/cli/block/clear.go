package block

import (
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/spf13/cobra"
)

var (
	clearDate string
	clearYes  bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every block on a day",
	Long: `Remove all blocks from a day's schedule. Linked calendar events are
deleted best-effort.

Examples:
  dayblock block clear --yes
  dayblock block clear --date 2026-08-24 --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(clearDate)
		if err != nil {
			return err
		}

		if !clearYes {
			fmt.Printf("This removes every block on %s. Re-run with --yes to confirm.\n",
				date.Format(cli.DateLayout))
			return nil
		}

		if err := app.Schedule.DeleteAllBlocks(cmd.Context(), date); err != nil {
			return fmt.Errorf("failed to clear day: %w", err)
		}

		fmt.Printf("Cleared %s.\n", date.Format(cli.DateLayout))
		return nil
	},
}

func init() {
	clearCmd.Flags().StringVarP(&clearDate, "date", "d", "", "day to clear (YYYY-MM-DD, default today)")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}
