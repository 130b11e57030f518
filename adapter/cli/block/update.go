package block

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/dayblock/adapter/cli"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/application/services"
	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	updateTitle    string
	updateStart    string
	updateEnd      string
	updateNotes    string
	updateCategory string
	updateIcon     string
	updateLink     bool
	updateUnlink   bool
	updateCalendar string
)

var updateCmd = &cobra.Command{
	Use:   "update <block-id>",
	Short: "Edit a time block",
	Long: `Edit a block's title, times or details. Times stay within the block's
original day; to move a block to another day, remove it and add it again.

Examples:
  dayblock block update 4f9c... --start 10:00 --end 11:30
  dayblock block update 4f9c... --title "Code review" --link`,
	Aliases: []string{"edit"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Schedule == nil {
			return fmt.Errorf("application not initialized")
		}

		blockID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid block ID: %w", err)
		}

		current, err := app.Schedule.Block(cmd.Context(), blockID)
		if err != nil {
			return err
		}

		input := services.UpdateBlockInput{
			BlockID:        blockID,
			Title:          current.Title(),
			StartTime:      current.StartTime(),
			EndTime:        current.EndTime(),
			Notes:          current.Notes(),
			Category:       current.Category(),
			Icon:           current.Icon(),
			LinkToCalendar: current.IsLinked(),
		}
		if current.IsLinked() {
			input.CalendarID = current.Link().CalendarID
		}

		if cmd.Flags().Changed("title") {
			input.Title = updateTitle
		}
		if cmd.Flags().Changed("notes") {
			input.Notes = updateNotes
		}
		if cmd.Flags().Changed("category") {
			input.Category = updateCategory
		}
		if cmd.Flags().Changed("icon") {
			input.Icon = updateIcon
		}
		if updateStart != "" {
			input.StartTime, err = cli.ParseClock(current.Day(), updateStart)
			if err != nil {
				return err
			}
		}
		if updateEnd != "" {
			input.EndTime, err = cli.ParseClock(current.Day(), updateEnd)
			if err != nil {
				return err
			}
		}
		if updateLink {
			input.LinkToCalendar = true
		}
		if updateUnlink {
			input.LinkToCalendar = false
		}
		if updateCalendar != "" {
			input.CalendarID = updateCalendar
		} else if input.CalendarID == "" {
			input.CalendarID = app.DefaultCalendarID
		}

		if err := app.Schedule.UpdateBlock(cmd.Context(), input); err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				fmt.Println("New times conflict with the existing schedule:")
				for _, b := range conflict.Conflicts {
					fmt.Printf("  %s - %s  %s\n",
						b.StartTime().Format("15:04"),
						b.EndTime().Format("15:04"),
						b.Title(),
					)
				}
				return fmt.Errorf("time block conflict")
			}
			return fmt.Errorf("failed to update block: %w", err)
		}

		fmt.Printf("Updated %q\n", input.Title)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "new title")
	updateCmd.Flags().StringVarP(&updateStart, "start", "s", "", "new start time (HH:MM)")
	updateCmd.Flags().StringVarP(&updateEnd, "end", "e", "", "new end time (HH:MM)")
	updateCmd.Flags().StringVarP(&updateNotes, "notes", "n", "", "new notes")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "new category")
	updateCmd.Flags().StringVar(&updateIcon, "icon", "", "new icon")
	updateCmd.Flags().BoolVar(&updateLink, "link", false, "link the block to the external calendar")
	updateCmd.Flags().BoolVar(&updateUnlink, "unlink", false, "remove the block's calendar link")
	updateCmd.Flags().StringVar(&updateCalendar, "calendar", "", "target calendar ID")
	updateCmd.MarkFlagsMutuallyExclusive("link", "unlink")
}
