package calendar

import (
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the provider's calendars",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Coordinator == nil {
			return fmt.Errorf("application not initialized")
		}
		if !app.Coordinator.Enabled() {
			fmt.Println("No calendar provider configured.")
			fmt.Println("Set CALENDAR_PROVIDER to caldav or google to enable sync.")
			return nil
		}

		calendars, err := app.Coordinator.ListCalendars(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list calendars: %w", err)
		}

		if len(calendars) == 0 {
			fmt.Println("The provider reported no calendars.")
			return nil
		}

		for _, c := range calendars {
			marker := " "
			if c.Primary {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, c.ID, c.Name)
		}
		return nil
	},
}
