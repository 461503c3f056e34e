// Package main is the entry point for the tasklist CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile string
	dbURL   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "tasklist",
		Short:         "A persistent task list",
		Long:          `tasklist keeps a list of tasks with completion state, inline editing and filtering, stored in SQLite, PostgreSQL, MySQL or a local file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.PersistentFlags().StringVar(&flags.dbURL, "db-url", "", "Storage URL, overrides DB_URL")

	cmd.AddCommand(serveCmd(flags))
	cmd.AddCommand(stdioCmd(flags))
	cmd.AddCommand(addCmd(flags))
	cmd.AddCommand(listCmd(flags))
	cmd.AddCommand(doneCmd(flags))
	cmd.AddCommand(renameCmd(flags))
	cmd.AddCommand(copyCmd(flags))
	cmd.AddCommand(rmCmd(flags))
	cmd.AddCommand(exportCmd(flags))
	cmd.AddCommand(versionCmd())

	return cmd
}
