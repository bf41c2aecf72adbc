package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "guide",
		Short:       "Show a walkthrough of every punch command",
		Annotations: map[string]string{skipApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			showGuide(cmd.OutOrStdout())
		},
	}
}

func showGuide(w io.Writer) {
	accentColor.Fprint(w, `
██████╗ ██╗   ██╗███╗   ██╗ ██████╗██╗  ██╗
██╔══██╗██║   ██║████╗  ██║██╔════╝██║  ██║
██████╔╝██║   ██║██╔██╗ ██║██║     ███████║
██╔═══╝ ██║   ██║██║╚██╗██║██║     ██╔══██║
██║     ╚██████╔╝██║ ╚████║╚██████╗██║  ██║
╚═╝      ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝╚═╝  ╚═╝
`)
	fmt.Fprint(w, `
punch - attendance and time tracking

YOUR DAY:

  in                      Clock in (interactive form in a terminal)
    -t, --type            payroll|billable
    -l, --location        Work location label, e.g. home or office
    --lat, --lng          Record coordinates
    --no-ui               Skip the form

  break start|end         Take a break; the running work item goes on hold
  pause start|end         Stop tracking for a while without a break
  out                     Clock out; open breaks, pauses and work items close
  status                  Current state and net worked time
  watch                   Live timer: b break · p pause · o clock out · q quit

HOURS:

  hours                   Today, this week (from Monday) and this month
    -m, --month           Total for a month, e.g. 2026-09
  report [period]         Sessions for today, yesterday, week, last-week,
                          month, last-month, dd/mm/yyyy, yyyy-mm or "N days"
    --json                JSON output
    --ui                  Browse in an interactive view

WORK ITEMS:

  work add <title>        Add a pending item (--start to begin now, --at HH:MM)
  work start <id>         Start a pending item
  work ls                 List open items (-a to include completed)

OTHER:

  notifications           Recent notifications, including the end-of-day reminder
  serve                   HTTP API plus the reminder scheduler
  version                 Print version information

GLOBAL FLAGS:

  --db <path>             Database file (PUNCH_DB)
  -u, --user <id>         Whose attendance to track (PUNCH_USER)
  -v, --verbose           Debug logging, including SQL

`)
}
