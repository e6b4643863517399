package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/core/config"
	"github.com/abdul-hamid-achik/volt/packages/history"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded runs",
	Long: `List, show and delete runs recorded with 'volt run --history'.

Examples:
  volt history list
  volt history list --search users --limit 10
  volt history show 5f0c...
  volt history delete 5f0c...
  volt history clear`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  historyListCommand,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run with its requests",
	Args:  cobra.ExactArgs(1),
	RunE:  historyShowCommand,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  historyDeleteCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded run",
	Args:  cobra.NoArgs,
	RunE:  historyClearCommand,
}

var (
	historyDBFlag     string
	historyLimitFlag  int
	historySearchFlag string
	historyJSONFlag   bool
)

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDBFlag, "db", getEnvString("VOLT_HISTORY_PATH", ""), "History database path (env: VOLT_HISTORY_PATH)")
	historyCmd.PersistentFlags().BoolVar(&historyJSONFlag, "json", false, "Print as JSON")
	historyListCmd.Flags().IntVar(&historyLimitFlag, "limit", history.DefaultLimit, "Maximum number of runs")
	historyListCmd.Flags().StringVar(&historySearchFlag, "search", "", "Only runs whose suite, file or request URLs contain this text")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func openHistory() (*history.Store, error) {
	path := historyDBFlag
	if path == "" {
		cfg, err := config.LoadConfig("")
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		path = cfg.HistoryPath
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return store, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyLimitFlag, historySearchFlag)
	if err != nil {
		return err
	}
	if historyJSONFlag {
		return printJSON(cmd, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tSUITE\tENGINE\tPASSED\tFAILED\tSKIPPED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%dms\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Suite, r.Engine,
			r.Passed, r.Failed, r.Skipped, r.DurationMs)
	}
	return tw.Flush()
}

func historyShowCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, history.ErrNotFound) {
		return withExitCode(ExitUsageError, fmt.Errorf("no run with id %s", args[0]))
	}
	if err != nil {
		return err
	}
	if historyJSONFlag {
		return printJSON(cmd, run)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s\n", color.New(color.Bold).Sprint(run.Suite), run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "File: %s  Engine: %s  Duration: %dms\n\n", run.File, run.Engine, run.DurationMs)
	for _, e := range run.Entries {
		mark := color.GreenString("✓")
		if !e.Passed {
			mark = color.RedString("✗")
		}
		fmt.Fprintf(w, "%s %s  %s %s  %d  %dms  (%d/%d assertions)\n", mark, e.Name, e.Method, e.URL,
			e.StatusCode, e.TimingMs, e.AssertionsPassed, e.AssertionsPassed+e.AssertionsFailed)
		if e.Error != "" {
			fmt.Fprintf(w, "    %s\n", color.RedString(e.Error))
		}
	}
	return nil
}

func historyDeleteCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return withExitCode(ExitUsageError, fmt.Errorf("no run with id %s", args[0]))
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}
