package progress

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/spf13/cobra"
)

var weekDate string

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show weekly statistics",
	Long: `Roll up the 7 days of a week into completion statistics. The week
runs Monday through Sunday and contains the given date (default today).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(weekDate)
		if err != nil {
			return err
		}

		stats, err := app.Schedule.WeeklyStats(cmd.Context(), date)
		if err != nil {
			return fmt.Errorf("failed to load weekly stats: %w", err)
		}

		fmt.Printf("Week of %s - %s\n",
			stats.WeekStart.Format("Jan 2"),
			stats.WeekEnd.Format("Jan 2, 2006"),
		)
		fmt.Println(strings.Repeat("=", 60))

		if stats.DaysWithData == 0 {
			fmt.Println("\n  No blocks were scheduled this week.")
			return nil
		}

		fmt.Printf("\nDays planned: %d | Good days: %d\n", stats.DaysWithData, stats.GoodDays)
		fmt.Printf("Average completion: %.0f%%\n", stats.AverageCompletion*100)
		fmt.Printf("Blocks: %d completed of %d\n", stats.CompletedBlocks, stats.TotalBlocks)
		fmt.Printf("Time: %dm completed of %dm planned\n", stats.CompletedMinutes, stats.TotalPlannedMinutes)
		return nil
	},
}

func init() {
	weekCmd.Flags().StringVarP(&weekDate, "date", "d", "", "any date inside the week (YYYY-MM-DD)")
}
