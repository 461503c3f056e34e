package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixml/tasklist/domain/task"
)

// printTask writes one list line: [x] name  (id).
func printTask(w io.Writer, t task.Task) {
	box := "[ ]"
	if t.Finished() {
		box = "[x]"
	}
	_, _ = fmt.Fprintf(w, "%s %s  (%s)\n", box, t.Name(), t.ID())
}

func addCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
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

			t, created, err := client.Tasks.CreateFrom(cmd.Context(), strings.Join(args, " "))
			if err := warnPersistence(cmd.ErrOrStderr(), err); err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("task text must not be blank")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.ID())
			return nil
		},
	}
}

func listCmd(flags *globalFlags) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()
			view := client.Tasks.ViewWith(f)
			for _, t := range view.Tasks {
				printTask(out, t)
			}
			_, _ = fmt.Fprintln(out, totalLine(view.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "Filter: all, active, completed")
	return cmd
}

// totalLine is the list footer, worded as in the web UI header.
func totalLine(n int) string {
	if n == 0 {
		return "You have no tasks in total"
	}
	return fmt.Sprintf("You have %d tasks in total", n)
}

// idCommand builds a command that applies fn to a single task id.
func idCommand(flags *globalFlags, use, short string, nargs int,
	fn func(cmd *cobra.Command, tasks taskStore, args []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(nargs),
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

			return warnPersistence(cmd.ErrOrStderr(), fn(cmd, client.Tasks, args))
		},
	}
}

func doneCmd(flags *globalFlags) *cobra.Command {
	return idCommand(flags, "done <id>", "Toggle a task between active and completed", 1,
		func(cmd *cobra.Command, tasks taskStore, args []string) error {
			t, err := tasks.Toggle(cmd.Context(), args[0])
			if err != nil && t.IsZero() {
				return err
			}
			printTask(cmd.OutOrStdout(), t)
			return err
		})
}

func renameCmd(flags *globalFlags) *cobra.Command {
	return idCommand(flags, "rename <id> <text>...", "Replace the text of a task", 2,
		func(cmd *cobra.Command, tasks taskStore, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			// Each step writes through, so only the last persistence error matters.
			if _, err := tasks.EnterEdit(ctx, id); err != nil && !persistenceOnly(err) && !errors.Is(err, task.ErrAlreadyEditing) {
				return err
			}
			if _, err := tasks.UpdateEditDraft(ctx, id, strings.Join(args[1:], " ")); err != nil && !persistenceOnly(err) {
				return err
			}
			t, err := tasks.SaveEdit(ctx, id)
			if err != nil && t.IsZero() {
				return err
			}
			printTask(cmd.OutOrStdout(), t)
			return err
		})
}

func copyCmd(flags *globalFlags) *cobra.Command {
	return idCommand(flags, "copy <id>", "Duplicate a task", 1,
		func(cmd *cobra.Command, tasks taskStore, args []string) error {
			t, err := tasks.Duplicate(cmd.Context(), args[0])
			if err != nil && t.IsZero() {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.ID())
			return err
		})
}

func rmCmd(flags *globalFlags) *cobra.Command {
	return idCommand(flags, "rm <id>", "Delete a task", 1,
		func(cmd *cobra.Command, tasks taskStore, args []string) error {
			return tasks.Delete(cmd.Context(), args[0])
		})
}
