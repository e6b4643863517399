package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/volt/packages/suite"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate suite files without executing them",
	Long: `Validate suite files against the suite schema and check every assertion
operator, extraction and timeout without sending any request.

Examples:
  volt validate api.yaml
  volt validate ./suites/
  volt validate --schema > suite.schema.json`,
	RunE: validateCommand,
}

var validateSchemaFlag bool

func init() {
	validateCmd.Flags().BoolVar(&validateSchemaFlag, "schema", false, "Print the suite JSON schema and exit")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	if validateSchemaFlag {
		fmt.Fprintln(cmd.OutOrStdout(), suite.Schema())
		return nil
	}
	if len(args) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("requires at least 1 file or directory"))
	}

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .yaml, .yml or .json suite files found"))
	}

	hasErrors := false
	for _, file := range files {
		s, err := suite.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", color.RedString("✗"), file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d requests)\n", color.GreenString("✓"), file, len(s.Requests))
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}

	return nil
}
