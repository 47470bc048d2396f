package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipper/internal/config"
	"clipper/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var statuses []queue.Status
				for _, value := range listStatuses {
					statuses = append(statuses, queue.Status(value))
				}

				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						shortToken(job.Token),
						string(job.Status),
						fmt.Sprintf("%d/%d", job.SegmentsDone, job.SegmentCount),
						job.ProgressMessage,
						job.CreatedAt.Local().Format(time.DateTime),
					})
				}
				table := renderTable(
					[]string{"Token", "Status", "Segments", "Progress", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by job status (repeatable)")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <token>",
		Short: "Remove a single job by token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := store.GetByToken(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, queue.ErrNotFound) {
						return fmt.Errorf("no job with token %q", args[0])
					}
					return err
				}
				removed, err := store.Remove(cmd.Context(), job.ID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no job with token %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s (%s)\n", shortToken(job.Token), job.Status)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var removed int64
				var err error
				if completedOnly {
					removed, err = store.ClearCompleted(cmd.Context())
				} else {
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				label := "jobs"
				if completedOnly {
					label = "completed jobs"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only remove completed jobs")
	return cmd
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
