package cmd

import (
	"os"
	"os/signal"

	"github.com/abdul-hamid-achik/volt/packages/accel"
	"github.com/abdul-hamid-achik/volt/packages/bench"
	"github.com/spf13/cobra"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare the reference and accelerated engines",
	Long: `Replay the built-in corpus of responses, assertions, templates and
extractions through the reference engine and the accelerated engine and
report per-operation latency percentiles and the speedup.

The accelerated engine is checked against the reference engine before it is
measured; a mismatch aborts the benchmark.

Examples:
  volt bench
  volt bench --rounds 1000 --json`,
	Args: cobra.NoArgs,
	RunE: benchCommand,
}

var (
	benchRoundsFlag  int
	benchJSONFlag    bool
	benchNoColorFlag bool
	benchVerboseFlag bool
)

func init() {
	benchCmd.Flags().IntVar(&benchRoundsFlag, "rounds", getEnvInt("VOLT_BENCH_ROUNDS", bench.DefaultRounds), "Corpus replays per engine (env: VOLT_BENCH_ROUNDS)")
	benchCmd.Flags().BoolVar(&benchJSONFlag, "json", false, "Print the report as JSON")
	benchCmd.Flags().BoolVar(&benchNoColorFlag, "no-color", getEnvBool("VOLT_NO_COLOR", false), "Disable colored output (env: VOLT_NO_COLOR)")
	benchCmd.Flags().BoolVarP(&benchVerboseFlag, "verbose", "v", false, "Log engine loading")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	module := accel.New(accel.WithLogger(newLogger(cmd.ErrOrStderr(), benchVerboseFlag)))
	fast, err := module.EnsureLoaded(ctx)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	report, err := bench.Run(ctx, []accel.Engine{accel.Reference(), fast}, bench.Config{
		Rounds: benchRoundsFlag,
	})
	if err != nil {
		return withExitCode(ExitTestFailure, err)
	}

	reporter := bench.NewReporter(
		bench.WithWriter(cmd.OutOrStdout()),
		bench.WithNoColor(benchNoColorFlag),
	)
	if benchJSONFlag {
		return reporter.JSONSummary(report)
	}
	reporter.Summary(report)
	return nil
}
