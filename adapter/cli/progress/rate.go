package progress

import (
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/spf13/cobra"
)

var (
	rateDate   string
	rateRating int
	rateNotes  string
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate a day",
	Long: `Record a 1-5 rating and optional notes on a day's summary.

Examples:
  dayblock progress rate --rating 4
  dayblock progress rate -r 2 -n "too many interruptions" --date 2026-08-22`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(rateDate)
		if err != nil {
			return err
		}

		if err := app.Schedule.RateDay(cmd.Context(), date, rateRating, rateNotes); err != nil {
			return fmt.Errorf("failed to rate day: %w", err)
		}

		fmt.Printf("Rated %s: %d/5\n", date.Format(cli.DateLayout), rateRating)
		return nil
	},
}

func init() {
	rateCmd.Flags().StringVarP(&rateDate, "date", "d", "", "date to rate (YYYY-MM-DD, default today)")
	rateCmd.Flags().IntVarP(&rateRating, "rating", "r", 0, "rating from 1 to 5 (required)")
	rateCmd.Flags().StringVarP(&rateNotes, "notes", "n", "", "notes about the day")

	_ = rateCmd.MarkFlagRequired("rating")
}
