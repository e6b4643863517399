package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/volt/packages/core/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the volt config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPathFlag)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		if cfg.IsDefault() {
			fmt.Fprintln(cmd.ErrOrStderr(), "No config file found; showing defaults.")
		}
		return printJSON(cmd, cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .volt.config.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPathFlag
		if path == "" {
			path = config.ConfigFilenames[0]
		}
		if _, err := os.Stat(path); err == nil && !configForceFlag {
			return withExitCode(ExitUsageError, fmt.Errorf("%s already exists (use --force to overwrite)", path))
		}
		if err := config.DefaultConfig().SaveConfig(path); err != nil {
			return withExitCode(ExitConfigError, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var (
	configPathFlag  string
	configForceFlag bool
)

func init() {
	configCmd.PersistentFlags().StringVar(&configPathFlag, "config", getEnvString("VOLT_CONFIG", ""), "Path to config file (env: VOLT_CONFIG)")
	configInitCmd.Flags().BoolVar(&configForceFlag, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
