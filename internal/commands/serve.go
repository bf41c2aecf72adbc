package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/api"
)

// serverCommand marks long-running commands that log at the configured level
const serverCommand = "punch/server"

func newServeCmd(app *App) *cobra.Command {
	var (
		addr       string
		noReminder bool
	)
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the HTTP API and the reminder scheduler",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{serverCommand: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.HTTPAddr
			}
			if !app.Config.Debug() {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.New(app.Attendance, app.WorkItems, app.Notifications, api.Options{
				Logger:       app.Logger,
				AllowOrigins: app.Config.CORSOrigins,
			})
			server := &http.Server{
				Addr:              addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
				MaxHeaderBytes:    1 << 20,
			}

			schedulerDone := make(chan struct{})
			if noReminder {
				close(schedulerDone)
			} else {
				go func() {
					defer close(schedulerDone)
					_ = app.Reminder.Run(ctx)
				}()
			}

			serveErr := make(chan error, 1)
			go func() {
				app.Logger.Info("punch api listening", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				stop()
				<-schedulerDone
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			}

			app.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error("graceful shutdown failed", "error", err)
			}
			<-schedulerDone
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env PUNCH_HTTP_ADDR)")
	cmd.Flags().BoolVar(&noReminder, "no-reminder", false, "do not run the reminder scheduler")
	return cmd
}
