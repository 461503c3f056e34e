package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/tasklist/internal/mcp"
)

func stdioCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants list, add, complete, rename, copy and delete tasks.
Logs go to stderr so stdout carries only protocol messages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			client, logger, err := openClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			logger.Info("starting MCP server",
				slog.String("version", version),
				slog.String("data_dir", cfg.DataDir()),
			)
			return mcp.NewServer(client.Tasks, version, logger).ServeStdio()
		},
	}
}
