package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"packwright/internal/api"
	"packwright/internal/approval"
	"packwright/internal/ipc"
	"packwright/internal/run"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start and manage packaging runs",
	}

	runCmd.AddCommand(newRunStartCommand(ctx))
	runCmd.AddCommand(newRunListCommand(ctx))
	runCmd.AddCommand(newRunShowCommand(ctx))
	runCmd.AddCommand(newRunDecideCommand(ctx))
	runCmd.AddCommand(newRunCancelCommand(ctx))
	runCmd.AddCommand(newRunRetryCommand(ctx))
	runCmd.AddCommand(newRunClearCommand(ctx))
	runCmd.AddCommand(newRunResetCommand(ctx))
	runCmd.AddCommand(newRunHealthCommand(ctx))

	return runCmd
}

func newRunStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <folder>",
		Short: "Start a packaging run for an episode folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := strings.TrimSpace(args[0])
			if folder == "" {
				return errors.New("folder name is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RunStart(folder)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Run %s started for %q\n", shortRunID(resp.Run.ID), resp.Run.FolderName)
				return nil
			})
		},
	}
}

func newRunListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packaging runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				var runs []api.Run
				if client != nil {
					resp, err := client.RunList(listStatuses)
					if err != nil {
						return err
					}
					runs = resp.Runs
				} else {
					var statuses []run.Status
					for _, value := range listStatuses {
						if parsed, ok := run.ParseStatus(value); ok {
							statuses = append(statuses, parsed)
						}
					}
					records, err := store.List(cmd.Context(), statuses...)
					if err != nil {
						return err
					}
					runs = api.FromRuns(records)
				}

				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Folder", "Status", "Phase", "Created"},
					buildRunListRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by run status (repeatable)")
	return cmd
}

func newRunShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <runID>",
		Short: "Show run details and any pending approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				var record api.Run
				if client != nil {
					resp, err := client.RunDescribe(id)
					if err != nil {
						return err
					}
					record = resp.Run
				} else {
					r, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					record = api.FromRun(r)
				}
				printRunDetails(cmd.OutOrStdout(), record)
				return nil
			})
		},
	}
}

func printRunDetails(out io.Writer, r api.Run) {
	fmt.Fprintf(out, "Run:      %s\n", r.ID)
	fmt.Fprintf(out, "Folder:   %s\n", r.FolderName)
	fmt.Fprintf(out, "Status:   %s\n", formatStatusLabel(r.Status))
	if r.Phase != "" {
		fmt.Fprintf(out, "Phase:    %s\n", formatStatusLabel(r.Phase))
	}
	if r.Classification != "" {
		fmt.Fprintf(out, "Class:    %s\n", formatStatusLabel(r.Classification))
	}
	if r.GuestName != "" {
		fmt.Fprintf(out, "Guest:    %s\n", r.GuestName)
	}
	if r.SelectedTitle != "" {
		fmt.Fprintf(out, "Title:    %s\n", r.SelectedTitle)
	}
	if r.DegradedAnalysis {
		fmt.Fprintln(out, "Analysis: degraded (some tasks failed)")
	}
	if r.Summary != "" {
		fmt.Fprintf(out, "Summary:  %s\n", r.Summary)
	}
	if r.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", r.ErrorMessage)
	}
	if created := formatDisplayTime(r.CreatedAt); created != "" {
		fmt.Fprintf(out, "Created:  %s\n", created)
	}

	if r.PendingApproval == nil {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Awaiting decision (%s). Choose with `packwright run decide %s <option>`:\n",
		formatStatusLabel(r.PendingApproval.Kind), shortRunID(r.ID))
	table := renderTable(
		[]string{"Option", "Text", "Strategy", "Rank"},
		buildApprovalOptionRows(r.PendingApproval.Options),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
	fmt.Fprint(out, table)
	fmt.Fprintln(out)
}

func newRunDecideCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decide <runID> <optionID>",
		Short: "Resolve a pending approval checkpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			optionID := strings.TrimSpace(args[1])
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				var status string
				if client != nil {
					resp, err := client.RunDecide(id, optionID)
					if err != nil {
						return err
					}
					status = resp.Run.Status
				} else {
					gate := approval.NewGate(store)
					r, err := gate.Decide(cmd.Context(), id, optionID)
					if err != nil {
						return err
					}
					status = string(r.Status)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Decision recorded; run is now %s\n", formatStatusLabel(status))
				return nil
			})
		},
	}
}

func newRunCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <runID>",
		Short: "Cancel a suspended run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				if client != nil {
					if _, err := client.RunCancel(id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Run %s cancelled\n", shortRunID(id))
					return nil
				}

				r, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !r.IsSuspended() {
					return fmt.Errorf("run %s is %s; only suspended runs accept cancellation", shortRunID(id), r.Status)
				}
				cancelled, err := store.Cancel(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !cancelled {
					return fmt.Errorf("run %s could not be cancelled", shortRunID(id))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Run %s cancelled\n", shortRunID(id))
				return nil
			})
		},
	}
}

func newRunRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [runID...]",
		Short: "Retry failed runs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, arg := range args {
				if id := strings.TrimSpace(arg); id != "" {
					ids = append(ids, id)
				}
			}
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				var updated int64
				if client != nil {
					resp, err := client.RunRetry(ids)
					if err != nil {
						return err
					}
					updated = resp.Updated
				} else {
					count, err := store.RetryFailed(cmd.Context(), ids...)
					if err != nil {
						return err
					}
					updated = count
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d failed runs\n", updated)
				return nil
			})
		},
	}
}

func newRunClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove finished runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted == clearFailed {
				return errors.New("specify exactly one of --completed or --failed")
			}
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				var removed int64
				var err error
				label := "completed"
				switch {
				case clearCompleted && client != nil:
					var resp *ipc.RunClearCompletedResponse
					if resp, err = client.RunClearCompleted(); err == nil {
						removed = resp.Removed
					}
				case clearCompleted:
					removed, err = store.ClearCompleted(cmd.Context())
				case client != nil:
					label = "failed"
					var resp *ipc.RunClearFailedResponse
					if resp, err = client.RunClearFailed(); err == nil {
						removed = resp.Removed
					}
				default:
					label = "failed"
					removed, err = store.ClearFailed(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s runs\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove completed runs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed runs")
	return cmd
}

func newRunResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Roll in-flight runs back to their last durable status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				var updated int64
				if client != nil {
					resp, err := client.RunReset()
					if err != nil {
						return err
					}
					updated = resp.Updated
				} else {
					count, err := store.ResetProcessing(cmd.Context())
					if err != nil {
						return err
					}
					updated = count
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d runs\n", updated)
				return nil
			})
		},
	}
}

func newRunHealthCommand(ctx *commandContext) *cobra.Command {
	var database bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show run store health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *run.Store) error {
				out := cmd.OutOrStdout()
				if database {
					return printDatabaseHealth(cmd, client, store)
				}

				var summary run.HealthSummary
				if client != nil {
					resp, err := client.RunHealth()
					if err != nil {
						return err
					}
					summary = run.HealthSummary{
						Total:     resp.Total,
						Active:    resp.Active,
						Suspended: resp.Suspended,
						Failed:    resp.Failed,
						Completed: resp.Completed,
						Cancelled: resp.Cancelled,
					}
				} else {
					var err error
					summary, err = store.Health(cmd.Context())
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Total: %d\nActive: %d\nSuspended: %d\nFailed: %d\nCompleted: %d\nCancelled: %d\n",
					summary.Total,
					summary.Active,
					summary.Suspended,
					summary.Failed,
					summary.Completed,
					summary.Cancelled,
				)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&database, "database", false, "Run database diagnostics instead of the status summary")
	return cmd
}

func printDatabaseHealth(cmd *cobra.Command, client *ipc.Client, store *run.Store) error {
	out := cmd.OutOrStdout()
	var health run.DatabaseHealth
	if client != nil {
		resp, err := client.DatabaseHealth()
		if err != nil {
			return err
		}
		health = run.DatabaseHealth{
			DBPath:           resp.DBPath,
			DatabaseExists:   resp.DatabaseExists,
			DatabaseReadable: resp.DatabaseReadable,
			TableExists:      resp.TableExists,
			IntegrityCheck:   resp.IntegrityCheck,
			TotalRuns:        resp.TotalRuns,
			Error:            resp.Error,
		}
	} else {
		var err error
		health, err = store.CheckHealth(cmd.Context())
		if err != nil && health.Error == "" {
			return err
		}
	}

	fmt.Fprintf(out, "Database: %s\n", health.DBPath)
	fmt.Fprintf(out, "Exists: %s\n", yesNo(health.DatabaseExists))
	fmt.Fprintf(out, "Readable: %s\n", yesNo(health.DatabaseReadable))
	fmt.Fprintf(out, "Runs table: %s\n", yesNo(health.TableExists))
	fmt.Fprintf(out, "Integrity: %s\n", yesNo(health.IntegrityCheck))
	fmt.Fprintf(out, "Total runs: %d\n", health.TotalRuns)
	if health.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", health.Error)
	}
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
