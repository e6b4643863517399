package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/assertions"
	"github.com/abdul-hamid-achik/volt/packages/core/runner"
	"github.com/abdul-hamid-achik/volt/packages/output"
	"github.com/abdul-hamid-achik/volt/packages/suite"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate assertions against a recorded response",
	Long: `Evaluate a list of assertions against a recorded response without
sending any request.

The response file is JSON with statusCode, statusText, headers, body and
timingMs. The assertions file is a JSON or YAML list using the same fields
as suite assertions.

Examples:
  volt check --response resp.json --assertions checks.json
  volt check --response resp.json --assertions checks.yaml --tier reference -o json`,
	Args: cobra.NoArgs,
	RunE: checkCommand,
}

var (
	checkResponseFlag   string
	checkAssertionsFlag string
	checkTierFlag       string
	checkOutputFlag     string
	checkVerboseFlag    bool
	checkNoColorFlag    bool
)

func init() {
	checkCmd.Flags().StringVarP(&checkResponseFlag, "response", "r", "", "Recorded response file (required)")
	checkCmd.Flags().StringVarP(&checkAssertionsFlag, "assertions", "a", "", "Assertions file (required)")
	checkCmd.Flags().StringVar(&checkTierFlag, "tier", getEnvString("VOLT_TIER", "auto"), "Engine tier: auto, reference, accelerated (env: VOLT_TIER)")
	checkCmd.Flags().StringVarP(&checkOutputFlag, "output", "o", getEnvString("VOLT_OUTPUT", "console"), "Output format: console, json, junit, tap (env: VOLT_OUTPUT)")
	checkCmd.Flags().BoolVarP(&checkVerboseFlag, "verbose", "v", getEnvBool("VOLT_VERBOSE", false), "Show passing assertions (env: VOLT_VERBOSE)")
	checkCmd.Flags().BoolVar(&checkNoColorFlag, "no-color", getEnvBool("VOLT_NO_COLOR", false), "Disable colored output (env: VOLT_NO_COLOR)")
	_ = checkCmd.MarkFlagRequired("response")
	_ = checkCmd.MarkFlagRequired("assertions")
}

// loadAssertions reads a JSON or YAML list of assertions. Unknown operators
// and type/operator mismatches are rejected before anything is evaluated.
func loadAssertions(path string) ([]assertions.Assertion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("reading assertions: %w", err))
	}

	var raw []suite.Assertion
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, withExitCode(ExitParseError, fmt.Errorf("decoding assertions %s: %w", path, err))
	}

	list := make([]assertions.Assertion, len(raw))
	for i, a := range raw {
		list[i] = a.Assertion()
		if err := assertions.Validate(list[i]); err != nil {
			return nil, withExitCode(ExitParseError, fmt.Errorf("assertion %d: %w", i+1, err))
		}
	}
	return list, nil
}

func checkCommand(cmd *cobra.Command, args []string) error {
	resp, err := readResponse(checkResponseFlag)
	if err != nil {
		return err
	}
	list, err := loadAssertions(checkAssertionsFlag)
	if err != nil {
		return err
	}

	engine, err := selectEngine(cmd.Context(), checkTierFlag, newLogger(cmd.ErrOrStderr(), checkVerboseFlag))
	if err != nil {
		return err
	}

	formatter, err := output.New(checkOutputFlag, cmd.OutOrStdout(), checkVerboseFlag, checkNoColorFlag)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	start := time.Now()
	results := engine.EvaluateBatch(list, resp)
	summary := assertions.Summarize(results)

	reqResult := &runner.RequestResult{
		Name:       checkResponseFlag,
		Passed:     summary.AllPassed(),
		Attempts:   1,
		Duration:   time.Since(start),
		Response:   resp,
		Assertions: results,
		Summary:    summary,
	}
	result := &runner.RunResult{
		File:     checkAssertionsFlag,
		Engine:   engine.Name(),
		Results:  []*runner.RequestResult{reqResult},
		Duration: reqResult.Duration,
	}
	if reqResult.Passed {
		result.Passed = 1
	} else {
		result.Failed = 1
	}

	formatter.FormatHeader(version)
	formatter.FormatResult(result)
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(result.Duration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if !result.Success() {
		return errTestsFailed
	}
	return nil
}
