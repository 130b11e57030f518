package progress

import (
	"github.com/spf13/cobra"
)

// Cmd is the progress command group
var Cmd = &cobra.Command{
	Use:   "progress",
	Short: "Review how your days went",
	Long:  `Daily and weekly completion statistics, plus end-of-day ratings.`,
}

func init() {
	Cmd.AddCommand(dayCmd)
	Cmd.AddCommand(weekCmd)
	Cmd.AddCommand(rateCmd)
}
