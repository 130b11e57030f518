package progress

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/spf13/cobra"
)

var dayDate string

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show a day's progress summary",
	Long: `Recompute and display completion statistics for a day. Viewing the
summary marks it as seen.

Examples:
  dayblock progress day
  dayblock progress day --date 2026-08-22`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(dayDate)
		if err != nil {
			return err
		}

		summary, err := app.Schedule.DailyProgress(cmd.Context(), date)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		perf := summary.Performance()
		fmt.Printf("%s %s\n", perf.Emoji(), date.Format("Monday, January 2, 2006"))
		fmt.Println(strings.Repeat("=", 60))

		if summary.TotalBlocks() == 0 {
			fmt.Println("\n  No blocks were scheduled on this day.")
			return nil
		}

		fmt.Printf("\nCompletion: %.0f%% (%s)\n", summary.CompletionPercentage()*100, perf.Label())
		fmt.Printf("Blocks: %d total | %d completed | %d skipped | %d in progress\n",
			summary.TotalBlocks(),
			summary.CompletedBlocks(),
			summary.SkippedBlocks(),
			summary.InProgressBlocks(),
		)
		fmt.Printf("Time: %dm completed of %dm planned\n",
			summary.CompletedMinutes(),
			summary.TotalPlannedMinutes(),
		)

		if rating := summary.Rating(); rating != nil {
			fmt.Printf("Rating: %d/5\n", *rating)
		}
		if summary.Notes() != "" {
			fmt.Printf("Notes: %s\n", summary.Notes())
		}

		if err := app.Schedule.MarkDayViewed(cmd.Context(), date); err != nil {
			return fmt.Errorf("failed to mark day viewed: %w", err)
		}
		return nil
	},
}

func init() {
	dayCmd.Flags().StringVarP(&dayDate, "date", "d", "", "date to summarize (YYYY-MM-DD)")
}
