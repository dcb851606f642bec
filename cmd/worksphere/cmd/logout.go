package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Long: `End the current session and remove the persisted credential.

Logging out without an active session is not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		wasAuthenticated := app.controller.IsAuthenticated()
		app.controller.Logout()

		if wasAuthenticated {
			fmt.Println("Logged out.")
		} else {
			fmt.Println("No active session.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
