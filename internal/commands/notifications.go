package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show recent attendance notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Notifications.List(cmd.Context(), app.Config.UserID, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(w, "No notifications yet.")
				return nil
			}
			for _, n := range list {
				mutedColor.Fprintf(w, "%s  ", n.CreatedAt.In(app.Config.Location).Format("02/01 15:04"))
				accentColor.Fprintln(w, n.Title)
				fmt.Fprintf(w, "             %s\n", n.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of notifications to show")
	return cmd
}
