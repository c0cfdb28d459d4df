// Package configcmder provides the config command for managing persistent
// smartread configuration stored in the .smartread/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
)

const configLongDesc string = `Manage persistent smartread configuration.

Configuration is stored as config.toml in the .smartread/ directory and
provides default values for command flags. CLI flags and SMARTREAD_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure, for example:
  rephrase.max_memories, rephrase.relevance_threshold,
  dedup.max_cache_size, dedup.allow_duplicate_after_days,
  llm.provider, llm.model, memory.provider, storage.driver

Use subcommands to get, set, or list configuration values:
  smartread config set <key> <value>    Set a configuration value
  smartread config get <key>            Get a configuration value
  smartread config list                 List all configuration values

Examples:
  smartread config set llm.provider anthropic
  smartread config set rephrase.relevance_threshold 0.4
  smartread config get memory.provider
  smartread config list`

const configShortDesc string = "Manage persistent smartread configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

func printTarget(w io.Writer, cfger *config.Configer) {
	if target := cfger.GetTarget(); target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
