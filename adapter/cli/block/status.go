package block

import (
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var startEarly bool

var completeCmd = &cobra.Command{
	Use:     "complete <block-id>",
	Short:   "Mark a block completed",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, args[0], domain.StatusCompleted, "completed")
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <block-id>",
	Short: "Mark a block skipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, args[0], domain.StatusSkipped, "skipped")
	},
}

var startCmd = &cobra.Command{
	Use:   "start <block-id>",
	Short: "Start working on a block",
	Long: `Mark a block in progress. Normally this only succeeds while the
current time is inside the block's interval; --early starts it ahead
of schedule.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !startEarly {
			return transition(cmd, args[0], domain.StatusInProgress, "started")
		}

		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}
		blockID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid block ID: %w", err)
		}
		if err := app.Schedule.StartBlockEarly(cmd.Context(), blockID); err != nil {
			return fmt.Errorf("failed to start block: %w", err)
		}
		fmt.Println("Block started early.")
		return nil
	},
}

var resetDate string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a day's statuses",
	Long: `Reset every block on a day back to not started, for replanning a day
that went sideways.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(resetDate)
		if err != nil {
			return err
		}

		if err := app.Schedule.ResetStatuses(cmd.Context(), date); err != nil {
			return fmt.Errorf("failed to reset day: %w", err)
		}

		fmt.Printf("Statuses reset for %s.\n", date.Format(cli.DateLayout))
		return nil
	},
}

func transition(cmd *cobra.Command, rawID string, target domain.BlockStatus, verb string) error {
	app := cli.GetApp()
	if app == nil || app.Schedule == nil {
		return fmt.Errorf("application not initialized")
	}

	blockID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid block ID: %w", err)
	}

	if err := app.Schedule.TransitionStatus(cmd.Context(), blockID, target); err != nil {
		return fmt.Errorf("failed to update block status: %w", err)
	}

	fmt.Printf("Block %s.\n", verb)
	return nil
}

func init() {
	startCmd.Flags().BoolVar(&startEarly, "early", false, "start before the block's interval begins")
	resetCmd.Flags().StringVarP(&resetDate, "date", "d", "", "day to reset (YYYY-MM-DD, default today)")
}
