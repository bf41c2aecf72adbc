package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/tui"
	"github.com/balkashynov/punch/internal/worktime"
)

func newHoursCmd(app *App) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Show worked hours for today, this week and this month",
		Long: `Show completed hours. Without --month you get today, this week (from Monday)
and this month. With --month you get the total for that month.

Examples:
  punch hours
  punch hours --month 2026-09`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			user := app.Config.UserID

			if month != "" {
				m, err := parser.ParseMonth(month, app.Config.Location)
				if err != nil {
					return err
				}
				hours, err := app.Attendance.MonthlyHours(ctx, user, m)
				if err != nil {
					return err
				}
				headerColor.Fprintf(w, "%s: ", m.Format("January 2006"))
				fmt.Fprintf(w, "%.1fh\n", hours)
				return nil
			}

			b, err := app.Attendance.TimeBreakdown(ctx, user)
			if err != nil {
				return err
			}
			headerColor.Fprintln(w, "📊 Worked hours")
			fmt.Fprintf(w, "   Today:      %6.2fh\n", b.Today)
			fmt.Fprintf(w, "   This week:  %6.2fh\n", b.Week)
			fmt.Fprintf(w, "   This month: %6.2fh\n", b.Month)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as yyyy-mm")
	return cmd
}

func newReportCmd(app *App) *cobra.Command {
	var (
		asJSON bool
		useUI  bool
	)
	cmd := &cobra.Command{
		Use:   "report [period]",
		Short: "List sessions for a period",
		Long: `List attendance sessions with their net hours.

Periods: today (default), yesterday, week, last-week, month, last-month,
dd/mm/yyyy, yyyy-mm, or "N days".

Examples:
  punch report week
  punch report last-month --json
  punch report "14 days" --ui`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			period, err := parser.ParsePeriod(input, app.Attendance.Now(), app.Config.Location)
			if err != nil {
				return err
			}

			sessions, err := app.Attendance.History(cmd.Context(), app.Config.UserID, period.Start, period.End)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				entries := worktime.TimeBreakdown(sessions, app.Attendance.Now(), app.Config.Location).Entries
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"period":  period.Label,
					"start":   period.Start,
					"end":     period.End,
					"hours":   worktime.Round2(worktime.RangeHours(sessions, period.Start, period.End)),
					"entries": entries,
				})
			}
			if useUI && app.IsInteractive() {
				return tui.RunReport(period.Label, sessions, app.Config.Location)
			}

			headerColor.Fprintf(w, "🗓  %s\n\n", period.Label)
			if len(sessions) == 0 {
				mutedColor.Fprintln(w, "No sessions in this period.")
				return nil
			}

			loc := app.Config.Location
			fmt.Fprintf(w, "%-10s %-5s %-5s %7s %-9s %s\n", "DATE", "IN", "OUT", "HOURS", "TYPE", "LOCATION")
			fmt.Fprintln(w, strings.Repeat("-", 60))
			for i := range sessions {
				s := &sessions[i]
				out, hours := "--:--", "live"
				if s.ClockOut != nil {
					out = worktime.WallClock(*s.ClockOut, loc)
					hours = fmt.Sprintf("%.2f", worktime.Round2(worktime.EntryHours(s)))
				}
				fmt.Fprintf(w, "%-10s %-5s %-5s %7s %-9s %s\n",
					s.ClockIn.In(loc).Format("Mon 02/01"), worktime.WallClock(s.ClockIn, loc), out, hours, s.ClockType, s.WorkLocation)
			}
			fmt.Fprintln(w, strings.Repeat("-", 60))
			successColor.Fprintf(w, "Total: %.2fh\n", worktime.Round2(worktime.RangeHours(sessions, period.Start, period.End)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSON output")
	cmd.Flags().BoolVar(&useUI, "ui", false, "browse sessions in an interactive view")
	return cmd
}
