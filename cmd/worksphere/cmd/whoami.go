package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	whoamiRemote bool
	whoamiClaims bool
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	Long: `Show the locally stored user record for the current session.

With --remote the record is re-fetched from the backend, which also verifies
that the token is still accepted. With --claims the token's JWT claims are
decoded and displayed (decoded locally, not verified; verification is the
backend's job).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if whoamiRemote && !app.controller.ValidateToken(cmd.Context()) {
			return errors.New("session is no longer valid")
		}

		user, ok := app.controller.CurrentUser()
		if !ok {
			return errors.New("not logged in")
		}

		fmt.Printf("Name:  %s\n", user.FullName)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Role:  %s\n", user.Role)
		if user.EmployeeID != "" {
			fmt.Printf("Employee ID: %s\n", user.EmployeeID)
		}

		if whoamiClaims {
			printClaims(app.controller.Token())
		}
		return nil
	},
}

// printClaims decodes the token's registered JWT claims without verifying
// the signature.
func printClaims(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		fmt.Printf("Token: not a decodable JWT (%v)\n", err)
		return
	}

	fmt.Println("Token claims:")
	if sub, err := parsed.Claims.GetSubject(); err == nil && sub != "" {
		fmt.Printf("  Subject:    %s\n", sub)
	}
	if iat, err := parsed.Claims.GetIssuedAt(); err == nil && iat != nil {
		fmt.Printf("  Issued at:  %s\n", iat.Format(time.RFC3339))
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		fmt.Printf("  Expires at: %s", exp.Format(time.RFC3339))
		if remaining := time.Until(exp.Time); remaining > 0 {
			fmt.Printf(" (in %s)", remaining.Round(time.Second))
		} else {
			fmt.Print(" (expired)")
		}
		fmt.Println()
	}
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiRemote, "remote", false, "re-fetch the user from the backend")
	whoamiCmd.Flags().BoolVar(&whoamiClaims, "claims", false, "decode and display the token's JWT claims")
	rootCmd.AddCommand(whoamiCmd)
}
