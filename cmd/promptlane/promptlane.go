// Package promptlanecmder
package promptlanecmder

import (
	"github.com/spf13/cobra"

	compilecmder "github.com/promptlane/promptlane/cmd/promptlane/compile"
	configcmder "github.com/promptlane/promptlane/cmd/promptlane/config"
	runcmder "github.com/promptlane/promptlane/cmd/promptlane/run"
	servecmder "github.com/promptlane/promptlane/cmd/promptlane/serve"
	versioncmder "github.com/promptlane/promptlane/cmd/promptlane/version"
)

const promptlaneLongDesc string = `Promptlane compiles versioned prompt templates and runs them against an
LLM provider.

Common commands:
  promptlane compile <slug>    Compile a stored prompt and print the result
  promptlane run <slug>        Compile and execute a prompt
  promptlane serve             Run the HTTP API server
  promptlane config            Manage persistent configuration`

const promptlaneShortDesc string = "Promptlane - prompt compilation and execution"

func NewPromptlaneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promptlane",
		Short: promptlaneShortDesc,
		Long:  promptlaneLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .promptlane/ directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(compilecmder.NewCompileCmd())
	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
