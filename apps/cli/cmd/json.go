package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
	"github.com/spf13/cobra"
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Format, minify, validate and inspect JSON documents",
	Long: `JSON utilities backed by the same parser the assertion engine uses.
Every subcommand reads the file given as argument, or stdin when it is
omitted or "-".

Examples:
  curl -s localhost/users | volt json format
  volt json info big-response.json
  volt json get resp.json data.users.0.id data.total`,
}

var jsonFormatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Pretty-print a JSON document",
	Args:  cobra.MaximumNArgs(1),
	RunE: jsonTransform(func(text string) string {
		return strings.TrimRight(jsonvalue.Format(text), "\n")
	}),
}

var jsonMinifyCmd = &cobra.Command{
	Use:   "minify [file]",
	Short: "Remove insignificant whitespace",
	Args:  cobra.MaximumNArgs(1),
	RunE:  jsonTransform(jsonvalue.Minify),
}

var jsonValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a document is valid JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  jsonValidateCommand,
}

var jsonInfoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Print size and shape of a document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  jsonInfoCommand,
}

var jsonGetCmd = &cobra.Command{
	Use:   "get <file|-> <path>...",
	Short: "Print the values at one or more JSON paths",
	Long: `Print the serialized value at each path, one "path<TAB>value" line per
path that resolves. Paths use dot notation with numeric array indices.`,
	Args: cobra.MinimumNArgs(2),
	RunE: jsonGetCommand,
}

var jsonTierFlag string

func init() {
	jsonGetCmd.Flags().StringVar(&jsonTierFlag, "tier", getEnvString("VOLT_TIER", "auto"), "Engine tier: auto, reference, accelerated (env: VOLT_TIER)")

	jsonCmd.AddCommand(jsonFormatCmd)
	jsonCmd.AddCommand(jsonMinifyCmd)
	jsonCmd.AddCommand(jsonValidateCmd)
	jsonCmd.AddCommand(jsonInfoCmd)
	jsonCmd.AddCommand(jsonGetCmd)
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func readJSON(cmd *cobra.Command, path string) (string, error) {
	text, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return "", err
	}
	if !jsonvalue.Valid(text) {
		return "", withExitCode(ExitParseError, jsonvalue.ErrInvalidJSON)
	}
	return text, nil
}

func jsonTransform(fn func(string) string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		text, err := readJSON(cmd, inputArg(args))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fn(text))
		return nil
	}
}

func jsonValidateCommand(cmd *cobra.Command, args []string) error {
	if _, err := readJSON(cmd, inputArg(args)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "valid")
	return nil
}

func jsonInfoCommand(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), inputArg(args))
	if err != nil {
		return err
	}
	info := jsonvalue.Inspect(text)
	if err := printJSON(cmd, info); err != nil {
		return err
	}
	if !info.Valid {
		return withExitCode(ExitParseError, nil)
	}
	return nil
}

func jsonGetCommand(cmd *cobra.Command, args []string) error {
	text, err := readJSON(cmd, args[0])
	if err != nil {
		return err
	}
	engine, err := selectEngine(cmd.Context(), jsonTierFlag, newLogger(cmd.ErrOrStderr(), false))
	if err != nil {
		return err
	}

	paths := args[1:]
	values := engine.ExtractBatch(text, paths)
	missing := 0
	for _, p := range paths {
		v, ok := values[p]
		if !ok {
			missing++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p, v)
	}
	if missing > 0 {
		return withExitCode(ExitTestFailure, fmt.Errorf("%d of %d paths not found", missing, len(paths)))
	}
	return nil
}
