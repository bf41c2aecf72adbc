package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/reminder"
	"github.com/balkashynov/punch/internal/workitems"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// App is everything a command needs, wired from the config
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *gorm.DB
	Attendance    *attendance.Manager
	WorkItems     *workitems.Coordinator
	Notifications *notify.Store
	Reminder      *reminder.Scheduler

	// Clock overrides time.Now for every component
	Clock         func() time.Time
	IsInteractive func() bool

	ownsDB bool
}

// NewApp opens the database and wires the components. Reminder alerts are
// also printed to alerts.
func NewApp(cfg *config.Config, logger *slog.Logger, alerts io.Writer) (*App, error) {
	database, err := db.Open(cfg.DBPath, db.Options{Verbose: cfg.Debug()})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	app := Wire(cfg, logger, database, time.Now, alerts)
	app.ownsDB = true
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	return app, nil
}

// Wire builds an App around an open database
func Wire(cfg *config.Config, logger *slog.Logger, database *gorm.DB, clock func() time.Time, alerts io.Writer) *App {
	store := notify.NewStore(database)
	items := workitems.New(database, cfg.Location, logger)

	mgr := attendance.NewManager(database, items, notify.Multi{store, notify.NewLog(logger)}, attendance.Options{
		AllowConcurrentSessions: cfg.AllowConcurrentSessions,
		DefaultLocation:         cfg.DefaultLocation,
		GeoTimeout:              cfg.GeoTimeout,
		Location:                cfg.Location,
		Logger:                  logger,
		Clock:                   clock,
	})

	reminderSinks := notify.Multi{store, notify.NewLog(logger)}
	if alerts != nil {
		reminderSinks = append(reminderSinks, notify.NewTerminal(alerts))
	}
	sched := reminder.New(database, reminderSinks, reminder.Options{
		Threshold: cfg.ReminderThreshold,
		Interval:  cfg.ReminderInterval,
		Location:  cfg.Location,
		Logger:    logger,
		Clock:     clock,
	})

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		Attendance:    mgr,
		WorkItems:     items,
		Notifications: store,
		Reminder:      sched,
		Clock:         clock,
		IsInteractive: func() bool { return false },
	}
}

// Close releases the database if NewApp opened it
func (a *App) Close() error {
	if !a.ownsDB {
		return nil
	}
	return db.Close(a.DB)
}

// AppFactory builds the App once flags are parsed
type AppFactory func(cfg *config.Config, logger *slog.Logger, alerts io.Writer) (*App, error)

// skipApp marks commands that run without a database
const skipApp = "punch/skip-app"

type rootOptions struct {
	dbPath  string
	user    string
	verbose bool
}

// NewRootCmd builds the command tree. cfg holds environment defaults that
// flags override; factory opens the App before any command that needs it.
func NewRootCmd(cfg *config.Config, factory AppFactory) *cobra.Command {
	var (
		opts rootOptions
		app  = &App{}
	)

	root := &cobra.Command{
		Use:   "punch",
		Short: "Attendance and time tracking from the terminal",
		Long: `punch tracks your working day: clock in and out, take breaks, pause tracking,
and see how many hours you have worked today, this week and this month.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipApp] == "true" {
				return nil
			}
			if opts.dbPath != "" {
				cfg.DBPath = opts.dbPath
			}
			if opts.user != "" {
				cfg.UserID = opts.user
			}
			if opts.verbose {
				cfg.LogLevel = slog.LevelDebug
			}

			level := cfg.LogLevel
			// One-shot commands stay quiet unless asked
			if cmd.Annotations[serverCommand] != "true" && !opts.verbose && level < slog.LevelWarn {
				level = slog.LevelWarn
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			built, err := factory(cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			*app = *built
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.DB == nil {
				return nil
			}
			return app.Close()
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path (env "+config.EnvDB+")")
	root.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "user id (env "+config.EnvUser+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging, including SQL")

	root.AddCommand(
		newClockInCmd(app),
		newClockOutCmd(app),
		newBreakCmd(app),
		newPauseCmd(app),
		newStatusCmd(app),
		newHoursCmd(app),
		newReportCmd(app),
		newWatchCmd(app),
		newServeCmd(app),
		newWorkCmd(app),
		newNotificationsCmd(app),
		newHelpCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute loads the configuration and runs the command line
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	root := NewRootCmd(cfg, func(cfg *config.Config, logger *slog.Logger, alerts io.Writer) (*App, error) {
		return NewApp(cfg, logger, alerts)
	})
	err = root.Execute()
	if err != nil && attendance.IsValidation(err) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "⚠️  %v\n", err)
		return errSilent
	}
	return err
}

// errSilent is returned once the error has already been shown
var errSilent = errors.New("")

// IsSilent reports whether err was already printed
func IsSilent(err error) bool {
	return errors.Is(err, errSilent)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "punch %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
