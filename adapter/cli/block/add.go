package block

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/application/services"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	addTitle    string
	addDate     string
	addStart    string
	addEnd      string
	addNotes    string
	addCategory string
	addIcon     string
	addLink     bool
	addCalendar string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a time block",
	Long: `Add a time block to a day's schedule. The block is rejected when it
overlaps an existing block on the same day.

Examples:
  dayblock block add --title "Deep work" --start 09:00 --end 11:00
  dayblock block add -t "Standup" -s 09:30 -e 09:45 --date 2026-08-24 --link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		date, err := cli.ParseDate(addDate)
		if err != nil {
			return err
		}
		startTime, err := cli.ParseClock(date, addStart)
		if err != nil {
			return err
		}
		endTime, err := cli.ParseClock(date, addEnd)
		if err != nil {
			return err
		}

		calendarID := addCalendar
		if calendarID == "" {
			calendarID = app.DefaultCalendarID
		}

		created, err := app.Schedule.AddBlock(cmd.Context(), services.AddBlockInput{
			Title:          addTitle,
			StartTime:      startTime,
			EndTime:        endTime,
			Notes:          addNotes,
			Category:       addCategory,
			Icon:           addIcon,
			LinkToCalendar: addLink,
			CalendarID:     calendarID,
		})
		if err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				fmt.Println("Block conflicts with the existing schedule:")
				for _, b := range conflict.Conflicts {
					fmt.Printf("  %s - %s  %s\n",
						b.StartTime().Format("15:04"),
						b.EndTime().Format("15:04"),
						b.Title(),
					)
				}
				return fmt.Errorf("time block conflict")
			}
			return fmt.Errorf("failed to add block: %w", err)
		}

		fmt.Printf("Added %q %s - %s (%dm)\n",
			created.Title(),
			created.StartTime().Format("15:04"),
			created.EndTime().Format("15:04"),
			created.DurationMinutes(),
		)
		fmt.Printf("ID: %s\n", created.ID())
		if created.IsLinked() {
			fmt.Printf("Linked to calendar event %s\n", created.Link().EventID)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "block title (required)")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "day of the block (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVarP(&addStart, "start", "s", "", "start time (HH:MM, required)")
	addCmd.Flags().StringVarP(&addEnd, "end", "e", "", "end time (HH:MM, required)")
	addCmd.Flags().StringVarP(&addNotes, "notes", "n", "", "notes")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category")
	addCmd.Flags().StringVar(&addIcon, "icon", "", "icon")
	addCmd.Flags().BoolVar(&addLink, "link", false, "mirror the block into the external calendar")
	addCmd.Flags().StringVar(&addCalendar, "calendar", "", "target calendar ID (default from configuration)")

	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("end")
}
