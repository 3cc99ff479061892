package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tasklist/export"
	"tasklist/models"
)

func outcomeErr(out models.Outcome, id string) error {
	switch out {
	case models.RejectedInvalid:
		return fmt.Errorf("task text must not be empty")
	case models.RejectedNotFound:
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

func newAddCmd(opts *options) *cobra.Command {
	var priority string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePriority(priority)
			if err != nil {
				return err
			}
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			task, out := st.Add(cmd.Context(), args[0], p)
			if err := outcomeErr(out, ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "high|medium|low")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var status, priority string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := models.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			pf, err := models.ParsePriorityFilter(priority)
			if err != nil {
				return err
			}
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			printTasks(cmd.OutOrStdout(), st.Filter(sf, pf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all|active|completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", "all", "all|high|medium|low")
	return cmd
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tCREATED\tTEXT")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n", t.ID, done, t.Priority, export.FormatTime(t.CreatedAt, time.Local), t.Text)
	}
	tw.Flush()
}

func newToggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task completed or active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return outcomeErr(st.Toggle(cmd.Context(), args[0]), args[0])
		},
	}
}

func newEditCmd(opts *options) *cobra.Command {
	var priority string
	cmd := &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Change a task's text and optionally its priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePriority(priority)
			if err != nil {
				return err
			}
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return outcomeErr(st.Edit(cmd.Context(), args[0], args[1], p), args[0])
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high|medium|low (unchanged if empty)")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return outcomeErr(st.Delete(cmd.Context(), args[0]), args[0])
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			s := st.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d  active: %d  completed: %d\n", s.Total, s.Active, s.Completed)
			fmt.Fprintf(cmd.OutOrStdout(), "high: %d  medium: %d  low: %d\n", s.High, s.Medium, s.Low)
			return nil
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add numbered sample tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("invalid count %d", count)
			}
			st, done, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if err := seedTasks(cmd.Context(), st, count); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated %d sample tasks\n", count)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of tasks")
	return cmd
}

type taskAdder interface {
	Add(ctx context.Context, text string, priority models.Priority) (models.Task, models.Outcome)
	Stats() models.Stats
}

// seedTasks adds count numbered tasks, cycling through the priorities.
func seedTasks(ctx context.Context, st taskAdder, count int) error {
	start := st.Stats().Total + 1
	for i := 0; i < count; i++ {
		p := models.Priorities[i%len(models.Priorities)]
		if _, out := st.Add(ctx, fmt.Sprintf("Task %d", start+i), p); out != models.Applied {
			return fmt.Errorf("seed task %d: %w", start+i, outcomeErr(out, ""))
		}
	}
	return nil
}
