package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/volt/packages/capture"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a value from a recorded response",
	Long: `Extract one value from a recorded response, the same way a suite's
extract block captures chain variables.

Examples:
  volt extract --response resp.json --type json --path data.user.id
  volt extract --response resp.json --type header --path Location
  volt extract --response resp.json --type regex --path 'token=(\w+)' --var token --json`,
	Args: cobra.NoArgs,
	RunE: extractCommand,
}

var (
	extractResponseFlag string
	extractTypeFlag     string
	extractPathFlag     string
	extractVarFlag      string
	extractTierFlag     string
	extractJSONFlag     bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractResponseFlag, "response", "r", "", "Recorded response file (required)")
	extractCmd.Flags().StringVar(&extractTypeFlag, "type", string(capture.TypeJSON), "Extraction type: json, header, regex, status, body")
	extractCmd.Flags().StringVarP(&extractPathFlag, "path", "p", "", "JSON path, header name or pattern")
	extractCmd.Flags().StringVar(&extractVarFlag, "var", "value", "Variable name for --json output")
	extractCmd.Flags().StringVar(&extractTierFlag, "tier", getEnvString("VOLT_TIER", "auto"), "Engine tier: auto, reference, accelerated (env: VOLT_TIER)")
	extractCmd.Flags().BoolVar(&extractJSONFlag, "json", false, "Print the chain variable as JSON")
	_ = extractCmd.MarkFlagRequired("response")
}

func extractCommand(cmd *cobra.Command, args []string) error {
	cfg := capture.Config{
		Type:         capture.Type(strings.ToLower(extractTypeFlag)),
		Path:         extractPathFlag,
		VariableName: extractVarFlag,
	}
	switch cfg.Type {
	case capture.TypeJSON, capture.TypeHeader, capture.TypeRegex:
		if cfg.Path == "" {
			return withExitCode(ExitUsageError, fmt.Errorf("--path is required for %s extraction", cfg.Type))
		}
	case capture.TypeStatus, capture.TypeBody:
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown extraction type %q", extractTypeFlag))
	}

	resp, err := readResponse(extractResponseFlag)
	if err != nil {
		return err
	}
	engine, err := selectEngine(cmd.Context(), extractTierFlag, newLogger(cmd.ErrOrStderr(), false))
	if err != nil {
		return err
	}

	value, ok := engine.Extract(cfg, resp)
	if !ok {
		return withExitCode(ExitTestFailure, fmt.Errorf("%s: %w", cfg.VariableName, capture.ErrCouldNotExtract))
	}

	if !extractJSONFlag {
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	data, err := json.MarshalIndent(capture.NewChainVariable(cfg, value, time.Now()), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
