package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/export"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		filter string
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as JSON, YAML, CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtValue, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			f, err := task.ParseFilter(filter)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			data, err := export.NewExporter(title).Export(cmd.Context(), client.Tasks.FilteredTasks(f), fmtValue)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Format: json, yaml, csv, pdf")
	cmd.Flags().StringVar(&filter, "filter", "all", "Filter: all, active, completed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&title, "title", "Tasks", "Report title for PDF exports")
	return cmd
}
