// Package cmd provides the CLI commands for the WorkSphere client.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morepradnya1503/PGDAC-Project/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "worksphere",
	Short: "WorkSphere - employee management client",
	Long: `WorkSphere is the command-line client for the WorkSphere employee
management backend.

It manages the local session (login, logout, inactivity expiry), validates
the stored credential against the backend, and enforces role-based route
access when fetching protected resources.

Configuration:
  Config is loaded from worksphere.yaml in the current directory,
  $HOME/.worksphere/, or /etc/worksphere/.

  Environment variables can override config values with the WORKSPHERE_ prefix.
  Example: WORKSPHERE_API_BASE_URL=https://hr.example.com/api

Commands:
  login       Authenticate and start a session
  logout      End the current session
  whoami      Show the authenticated user
  session     Inspect the session (status, history)
  get         Fetch a protected resource
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./worksphere.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
