package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

func newWorkCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Manage tracked work items",
		Long: `Work items are the tasks you log time against during the day. Breaks and
pauses put the running item on hold; clocking out completes every open item.`,
	}
	cmd.AddCommand(newWorkAddCmd(app), newWorkStartCmd(app), newWorkListCmd(app))
	return cmd
}

func newWorkAddCmd(app *App) *cobra.Command {
	var (
		at    string
		start bool
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a pending work item",
		Long: `Add a work item. It starts as pending; use --start to begin it right away.

Examples:
  punch work add "Review payroll export"
  punch work add "Standup" --at 09:30
  punch work add "Fix login bug" --start`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title cannot be empty")
			}

			startAt := app.Attendance.Now()
			if at != "" {
				t, err := parser.ParseClock(at, startAt, app.Config.Location)
				if err != nil {
					return err
				}
				startAt = t
			}

			item, err := app.WorkItems.Create(ctx, app.Config.UserID, title, startAt)
			if err != nil {
				return err
			}
			if start {
				if item, err = app.WorkItems.Start(ctx, app.Config.UserID, item.ID, app.Attendance.Now()); err != nil {
					return err
				}
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✅ Work item #%d \"%s\" added", item.ID, item.Title)
			fmt.Fprintf(cmd.OutOrStdout(), " (%s, %s)\n", item.Status, item.StartTime)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "start time as HH:MM (default now)")
	cmd.Flags().BoolVar(&start, "start", false, "start the item immediately")
	return cmd
}

func newWorkStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a pending work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid work item ID '%s'", args[0])
			}
			item, err := app.WorkItems.Start(cmd.Context(), app.Config.UserID, uint(id), app.Attendance.Now())
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "⏱️  Started #%d: %s at %s\n", item.ID, item.Title, item.StartTime)
			return nil
		},
	}
}

func newWorkListCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List work items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.WorkItems.List(cmd.Context(), app.Config.UserID, all)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(w, "No work items. Use 'punch work add \"title\"' to create one.")
				return nil
			}

			fmt.Fprintf(w, "%-4s %-12s %-5s %-5s %6s %s\n", "ID", "STATUS", "START", "END", "SPENT", "TITLE")
			fmt.Fprintln(w, strings.Repeat("-", 70))
			for _, item := range items {
				end, spent := "", ""
				if item.EndTime != nil {
					end = *item.EndTime
				}
				if item.TimeSpentMinutes != nil {
					spent = fmt.Sprintf("%dm", *item.TimeSpentMinutes)
				}
				title := item.Title
				if len(title) > 38 {
					title = title[:35] + "..."
				}
				line := fmt.Sprintf("%-4d %-12s %-5s %-5s %6s %s\n", item.ID, item.Status, item.StartTime, end, spent, title)
				switch item.Status {
				case models.WorkInProgress:
					successColor.Fprint(w, line)
				case models.WorkOnHold:
					warnColor.Fprint(w, line)
				case models.WorkCompleted:
					mutedColor.Fprint(w, line)
				default:
					fmt.Fprint(w, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed items")
	return cmd
}
