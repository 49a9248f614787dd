package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/logging"
	"github.com/jmgilman/execkit/internal/prompt"
	"github.com/jmgilman/execkit/internal/slogger"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recorded runs",
		Long: `Show or clear the runs recorded by 'execkit run' and 'execkit start'.

With no subcommand, lists recorded runs.`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}
	addListFlags(cmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		Example: `  # List every recorded run
  execkit history list

  # Show the last 5 failed runs
  execkit history list --status failed -n 5`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}
	addListFlags(listCmd)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run and its log",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}
	clearCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(listCmd, clearCmd)
	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("status", "", "only show runs with this status (running, started, exited, failed)")
	cmd.Flags().IntP("limit", "n", 0, "only show the most recent N runs")
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	status, err := cmd.Flags().GetString("status")
	if err != nil {
		return fmt.Errorf("get status flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("get limit flag: %w", err)
	}

	filter := history.ListFilter{Status: history.Status(status), Limit: limit}
	if err := validateStatus(filter.Status); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := requireStore(ctx)
	if err != nil {
		return err
	}

	entries, err := store.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(entries) == 0 {
		slogger.L(ctx).Info("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tSTATUS\tEXIT\tDURATION\tSTARTED\tCOMMAND"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range entries {
		e := &entries[i]
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Status,
			formatExit(e),
			formatDuration(e.Duration()),
			formatTimeAgo(e.StartedAt),
			strings.Join(e.Args, " "),
		); err != nil {
			return fmt.Errorf("write run: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

func validateStatus(s history.Status) error {
	switch s {
	case "", history.StatusRunning, history.StatusStarted, history.StatusExited, history.StatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid status %q", s)
	}
}

// formatExit shows the exit code only when it was observed.
func formatExit(e *history.Entry) string {
	if e.Status != history.StatusExited {
		return "-"
	}
	return strconv.Itoa(e.ExitCode)
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("get yes flag: %w", err)
	}

	ctx := cmd.Context()
	store, err := requireStore(ctx)
	if err != nil {
		return err
	}

	p := PrompterFromContext(ctx)
	if p == nil {
		return errors.New("prompter not initialized")
	}

	if !yes {
		confirmed, err := p.Confirm("Clear run history?", "Every recorded run and its output log will be deleted.")
		if err != nil {
			if errors.Is(err, prompt.ErrCanceled) {
				return nil
			}
			return err
		}
		if !confirmed {
			p.Print("Canceled.")
			return nil
		}
	}

	n, err := store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	if cfg := ConfigFromContext(ctx); cfg != nil {
		if _, err := logging.NewPathManager(cfg.Storage.Logs).RemoveAll(); err != nil {
			slogger.L(ctx).Warn("failed to remove run logs", "error", err)
		}
	}

	p.Print(fmt.Sprintf("Removed %d run(s).", n))
	return nil
}
