package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/volt/packages/core/env"
	"github.com/spf13/cobra"
)

var substCmd = &cobra.Command{
	Use:   "subst [file]",
	Short: "Substitute {{variables}} in text",
	Long: `Replace {{name}} tokens in a file or stdin with variable values.

Variables come from --env-file and --var, with --var winning. Tokens of the
form {{$NAME}} are resolved from the process environment. Unknown tokens are
left in place and reported on stderr.

Examples:
  echo 'GET {{baseUrl}}/users/{{id}}' | volt subst --var baseUrl=http://localhost --var id=7
  volt subst body.json --env-file .env
  volt subst body.json --find`,
	Args: cobra.MaximumNArgs(1),
	RunE: substCommand,
}

var (
	substVarsFlag    []string
	substEnvFileFlag string
	substFindFlag    bool
	substTierFlag    string
	substStrictFlag  bool
)

func init() {
	substCmd.Flags().StringArrayVar(&substVarsFlag, "var", nil, "Variable as name=value (repeatable)")
	substCmd.Flags().StringVar(&substEnvFileFlag, "env-file", getEnvString("VOLT_ENV_FILE", ""), "Path to .env file (env: VOLT_ENV_FILE)")
	substCmd.Flags().BoolVar(&substFindFlag, "find", false, "List the variable names used instead of substituting")
	substCmd.Flags().StringVar(&substTierFlag, "tier", getEnvString("VOLT_TIER", "auto"), "Engine tier: auto, reference, accelerated (env: VOLT_TIER)")
	substCmd.Flags().BoolVar(&substStrictFlag, "strict", false, "Fail when a variable stays unresolved")
}

func substCommand(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	text, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	engine, err := selectEngine(cmd.Context(), substTierFlag, newLogger(cmd.ErrOrStderr(), false))
	if err != nil {
		return err
	}

	if substFindFlag {
		for _, name := range engine.FindVariables(text) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	fileVars, err := loadVariables(substEnvFileFlag)
	if err != nil {
		return err
	}
	flagVars, err := parseVarFlags(substVarsFlag)
	if err != nil {
		return err
	}
	vars := env.MergeVariables(fileVars, flagVars)

	out := engine.Substitute(text, vars)
	var unresolved []string
	if engine.HasVariables(out) {
		resolver := env.NewResolver()
		resolver.SetWarnFunc(func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
		})
		out = resolver.Resolve(out)
		unresolved = resolver.GetUnresolvedVariables(out)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	if substStrictFlag && len(unresolved) > 0 {
		return withExitCode(ExitConfigError,
			fmt.Errorf("unresolved variables: %s", strings.Join(unresolved, ", ")))
	}
	return nil
}
