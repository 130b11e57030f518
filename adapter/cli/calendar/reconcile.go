package calendar

import (
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Sweep linked blocks for external drift",
	Long: `Check every linked block against the external calendar and unlink
blocks whose event was deleted out of band. Transient provider errors
leave linkage untouched; re-run once the provider recovers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		report, err := app.Schedule.Reconcile(cmd.Context())
		if err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}

		fmt.Printf("Checked %d linked blocks: %d unlinked, %d lookups failed\n",
			report.Checked, report.Unlinked, report.Failed)
		if report.Failed > 0 {
			fmt.Println("Failed lookups were left linked; run reconcile again later.")
		}
		return nil
	},
}
