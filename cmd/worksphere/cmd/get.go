package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/routing"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Fetch a protected resource",
	Long: `Fetch a backend resource as JSON, subject to route protection.

The path is checked against the route policy first: unauthenticated access
to a protected path is refused, and so is access outside the current role's
area. Fetching also counts as activity and resets the inactivity timer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		path := args[0]
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		decision := app.guard.Decide(cmd.Context(), path)
		switch decision.Action {
		case routing.ActionAllow:
		case routing.ActionLoginRedirect:
			return fmt.Errorf("access to %s requires login (worksphere login)", path)
		case routing.ActionRoleRedirect:
			return fmt.Errorf("access to %s denied: %s (your area is %s)",
				path, decision.Reason, decision.Target)
		default:
			return fmt.Errorf("access to %s deferred: %s", path, decision.Reason)
		}

		var payload any
		if err := app.gateway.Get(cmd.Context(), path, &payload); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
