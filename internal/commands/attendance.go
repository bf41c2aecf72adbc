package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/geo"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/tui"
	"github.com/balkashynov/punch/internal/worktime"
)

type clockInOptions struct {
	clockType string
	location  string
	lat       float64
	lng       float64
	noUI      bool
}

func newClockInCmd(app *App) *cobra.Command {
	var opts clockInOptions
	cmd := &cobra.Command{
		Use:   "in",
		Short: "Clock in and start your working day",
		Long: `Clock in. In a terminal you are asked for the clock type and work location
unless they are given as flags.

Examples:
  punch in                         # Interactive form
  punch in --type billable -l home
  punch in --lat 52.52 --lng 13.40 # Record where you clocked in`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if app.IsInteractive() && !opts.noUI && !flags.Changed("type") && !flags.Changed("location") {
				if err := clockInForm(app, &opts).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "❌ Clock-in cancelled.")
						return nil
					}
					return err
				}
			}

			req := attendance.ClockInRequest{
				ClockType:    models.ClockType(opts.clockType),
				WorkLocation: opts.location,
			}
			if flags.Changed("lat") != flags.Changed("lng") {
				return fmt.Errorf("--lat and --lng must be given together")
			}
			if flags.Changed("lat") {
				req.Locator = geo.Static{Latitude: opts.lat, Longitude: opts.lng}
			}

			s, err := app.Attendance.ClockIn(cmd.Context(), app.Config.UserID, req)
			if err != nil {
				return err
			}
			successColor.Fprintf(cmd.OutOrStdout(), "✅ Clocked in at %s", worktime.WallClock(s.ClockIn, app.Config.Location))
			fmt.Fprintf(cmd.OutOrStdout(), " (%s, %s)\n", s.ClockType, s.WorkLocation)
			if s.Latitude != nil && s.Longitude != nil {
				mutedColor.Fprintf(cmd.OutOrStdout(), "   📍 %.4f, %.4f\n", *s.Latitude, *s.Longitude)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.clockType, "type", "t", string(models.ClockPayroll), "clock type: payroll|billable")
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", "work location label (default "+config.EnvDefaultLocation+")")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "latitude to record")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "longitude to record")
	cmd.Flags().BoolVar(&opts.noUI, "no-ui", false, "skip the interactive form")
	return cmd
}

func clockInForm(app *App, opts *clockInOptions) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Clock type").
				Options(
					huh.NewOption("Payroll", string(models.ClockPayroll)),
					huh.NewOption("Billable", string(models.ClockBillable)),
				).
				Value(&opts.clockType),
			huh.NewInput().
				Title("Where are you working?").
				Placeholder(app.Config.DefaultLocation).
				Value(&opts.location),
		),
	).WithShowHelp(false)
}

func newClockOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "out",
		Short: "Clock out and finish your working day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Attendance.ClockOut(cmd.Context(), app.Config.UserID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			successColor.Fprintf(w, "⏹️  Clocked out at %s\n", worktime.WallClock(*s.ClockOut, app.Config.Location))
			fmt.Fprintf(w, "📊 Worked %s (breaks %d min, pauses %d min)\n",
				attendance.FormatDuration(worktime.NetWorked(s, *s.ClockOut)), s.TotalBreakMinutes, s.TotalPauseMinutes)
			return nil
		},
	}
}

func newBreakCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Start or end a break",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start a break; your running work item is put on hold",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := app.Attendance.StartBreak(cmd.Context(), app.Config.UserID)
				if err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "☕ Break started at %s\n", worktime.WallClock(*s.BreakStart, app.Config.Location))
				return nil
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "End the current break",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := app.Attendance.EndBreak(cmd.Context(), app.Config.UserID)
				if err != nil {
					return err
				}
				successColor.Fprintln(cmd.OutOrStdout(), "▶️  Back to work")
				mutedColor.Fprintf(cmd.OutOrStdout(), "   Breaks today: %d min\n", s.TotalBreakMinutes)
				return nil
			},
		},
	)
	return cmd
}

func newPauseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause or resume time tracking",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Pause tracking; your running work item is put on hold",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := app.Attendance.StartPause(cmd.Context(), app.Config.UserID)
				if err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "⏸️  Tracking paused at %s\n", worktime.WallClock(*s.PauseStart, app.Config.Location))
				return nil
			},
		},
		&cobra.Command{
			Use:   "end",
			Short: "Resume tracking",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := app.Attendance.EndPause(cmd.Context(), app.Config.UserID)
				if err != nil {
					return err
				}
				successColor.Fprintln(cmd.OutOrStdout(), "▶️  Tracking resumed")
				mutedColor.Fprintf(cmd.OutOrStdout(), "   Pauses today: %d min\n", s.TotalPauseMinutes)
				return nil
			},
		},
	)
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are clocked in and how long you have worked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.Attendance.GetStatus(ctx, app.Config.UserID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if st.Session == nil {
				fmt.Fprintln(w, "You are not clocked in. Use 'punch in' to start your day.")
				return nil
			}

			s := st.Session
			loc := app.Config.Location
			accentColor.Fprintf(w, "%s %s", stateIcon(s.Status), stateText(s.Status))
			fmt.Fprintf(w, " since %s (%s, %s)\n", worktime.WallClock(s.ClockIn, loc), s.ClockType, s.WorkLocation)
			fmt.Fprintf(w, "   Net worked: %s\n", attendance.FormatDuration(st.NetWorked))
			mutedColor.Fprintf(w, "   Breaks: %d min · Pauses: %d min\n", s.TotalBreakMinutes, s.TotalPauseMinutes)
			if s.BreakStart != nil {
				mutedColor.Fprintf(w, "   On break since %s\n", worktime.WallClock(*s.BreakStart, loc))
			}
			if s.PauseStart != nil {
				mutedColor.Fprintf(w, "   Paused since %s\n", worktime.WallClock(*s.PauseStart, loc))
			}

			// Covers users who never run the server: the alert prints here
			if _, err := app.Reminder.Check(ctx, s.ID, st.At); err != nil {
				app.Logger.Warn("reminder check failed", "session_id", s.ID, "error", err)
			}
			return nil
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live timer with break, pause and clock-out keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunWatch(cmd.Context(), app.Attendance, app.Reminder, app.Config.UserID, app.Config.Location)
		},
	}
}
