package block

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var listDate string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a day's schedule",
	Long: `Display the time blocks for today or a specific date.

Examples:
  dayblock block list
  dayblock block list --date 2026-08-24`,
	Aliases: []string{"ls", "show"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(listDate)
		if err != nil {
			return err
		}

		blocks, err := app.Schedule.BlocksForDate(cmd.Context(), date)
		if err != nil {
			return fmt.Errorf("failed to load schedule: %w", err)
		}

		fmt.Printf("Schedule for %s\n", date.Format("Monday, January 2, 2006"))
		fmt.Println(strings.Repeat("=", 60))

		if len(blocks) == 0 {
			fmt.Println("\n  No blocks scheduled.")
			fmt.Println("\n  Use 'dayblock block add' to plan one.")
			return nil
		}

		totalMinutes := 0
		for _, b := range blocks {
			totalMinutes += b.DurationMinutes()

			linked := ""
			if b.IsLinked() {
				linked = "  *"
			}
			fmt.Printf("\n%s %s - %s  %s (%dm)%s\n",
				statusGlyph(b.Status()),
				b.StartTime().Format("15:04"),
				b.EndTime().Format("15:04"),
				b.Title(),
				b.DurationMinutes(),
				linked,
			)
			detail := fmt.Sprintf("    ID: %s", b.ID())
			if b.Category() != "" {
				detail += " | " + b.Category()
			}
			fmt.Println(detail)
			if b.Notes() != "" {
				fmt.Printf("    %s\n", b.Notes())
			}
		}

		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("Total: %d blocks, %dm planned\n", len(blocks), totalMinutes)
		return nil
	},
}

func statusGlyph(status domain.BlockStatus) string {
	switch status {
	case domain.StatusInProgress:
		return "[>]"
	case domain.StatusCompleted:
		return "[x]"
	case domain.StatusSkipped:
		return "[-]"
	default:
		return "[ ]"
	}
}

func init() {
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "date to show (YYYY-MM-DD)")
}
