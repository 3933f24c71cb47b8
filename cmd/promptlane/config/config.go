// Package configcmder provides the config command for managing persistent
// promptlane configuration stored in the .promptlane/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent promptlane configuration.

Configuration is stored as config.toml in the .promptlane/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen,
  provider.upstream, provider.api_key, provider.model,
  prompts.dir

Use subcommands to get, set, or list configuration values:
  promptlane config set <key> <value>    Set a configuration value
  promptlane config get <key>            Get a configuration value
  promptlane config list                 List all configuration values

Examples:
  promptlane config set provider.model openai/gpt-4o
  promptlane config set provider.upstream https://openrouter.ai/api/v1
  promptlane config get provider.model
  promptlane config list`

const configShortDesc string = "Manage persistent promptlane configuration"

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
