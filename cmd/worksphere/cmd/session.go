package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect the session",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Long: `Show whether a session is active, for whom, and how long until it
expires from inactivity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		user, ok := app.controller.CurrentUser()
		if !ok {
			fmt.Println("State: unauthenticated")
			fmt.Printf("Session file: %s\n", app.store.Path())
			return nil
		}

		fmt.Println("State: authenticated")
		fmt.Printf("User:  %s <%s>\n", user.FullName, user.Email)
		fmt.Printf("Role:  %s\n", user.Role)
		fmt.Printf("Expires in: %s (inactivity timeout %s)\n",
			app.controller.Remaining().Round(time.Second), app.cfg.Session.Timeout)
		fmt.Printf("Session file: %s\n", app.store.Path())
		return nil
	},
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent session events",
	Long: `Show recent session lifecycle events (logins, logouts, expiries)
from the local audit trail. Requires audit to be enabled in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if app.audit == nil {
			return errors.New("audit is not enabled; set audit.enabled in the config")
		}

		events, err := app.audit.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No session events recorded.")
			return nil
		}

		for _, ev := range events {
			line := fmt.Sprintf("%s  %-12s", ev.CreatedAt.Format(time.RFC3339), ev.Event)
			if ev.UserEmail != "" {
				line += "  " + ev.UserEmail
			}
			if ev.Detail != "" {
				line += "  (" + ev.Detail + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	sessionHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of events to show")
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	rootCmd.AddCommand(sessionCmd)
}
