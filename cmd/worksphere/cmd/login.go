package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morepradnya1503/PGDAC-Project/internal/domain/auth"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/routing"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/session"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and start a session",
	Long: `Authenticate against the backend with email and password.

On success the session is persisted locally and survives restarts until it
expires from inactivity or the backend rejects the credential. A new login
fully replaces any existing session.

The password is read from --password, or interactively from stdin when the
flag is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		user, err := app.controller.Login(cmd.Context(), auth.Credentials{
			Email:    loginEmail,
			Password: password,
		})
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			return fmt.Errorf("login rejected: %w", err)
		case errors.Is(err, session.ErrServerUnreachable):
			return fmt.Errorf("backend unreachable: %w", err)
		case err != nil:
			return err
		}

		fmt.Printf("Logged in as %s (%s)\n", user.FullName, user.Role)
		fmt.Printf("Landing page: %s\n", routing.DefaultLanding(user.Role))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
}
