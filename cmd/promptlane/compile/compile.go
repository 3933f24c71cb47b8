// Package compilecmder provides the compile command for rendering stored
// prompts without executing them.
package compilecmder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptlane/promptlane/pkg/cliargs"
	"github.com/promptlane/promptlane/pkg/config"
	"github.com/promptlane/promptlane/pkg/dotdir"
	"github.com/promptlane/promptlane/pkg/logger"
	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/store"
)

type compileCommander struct {
	version    string
	promptsDir string
	vars       []string
	varsJSON   string
	globalJSON string
	asJSON     bool
	debug      bool
}

const compileLongDesc string = `Compile a stored prompt and print the rendered result.

Variables are supplied with repeated --var key=value flags or a single
--vars JSON object. Values that parse as JSON (numbers, booleans, arrays,
objects) are decoded; everything else is a plain string.

Examples:
  promptlane compile greeting --var name=Ada
  promptlane compile greeting@1.2.0 --vars '{"name":"Ada"}'
  promptlane compile report --var user.name=Ada --global '{"company":"Acme"}' --json`

const compileShortDesc string = "Compile a stored prompt"

func NewCompileCmd() *cobra.Command {
	cmder := &compileCommander{}

	cmd := &cobra.Command{
		Use:   "compile <slug>[@version]",
		Short: compileShortDesc,
		Long:  compileLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.DefaultFlagSet, []string{
				config.FlagPromptsDir,
			})

			cmder.promptsDir = v.GetString("prompts.dir")
			if cmder.promptsDir == "" {
				cmder.promptsDir, err = dotdir.NewManager().PromptsDir(configDir)
				if err != nil {
					return err
				}
			}

			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagPromptsDir, &cmder.promptsDir)
	cmd.Flags().StringVar(&cmder.version, "version", "", "Prompt version (default: latest)")
	cmd.Flags().StringArrayVar(&cmder.vars, "var", nil, "Variable assignment key=value (repeatable)")
	cmd.Flags().StringVar(&cmder.varsJSON, "vars", "", "Variables as a JSON object")
	cmd.Flags().StringVar(&cmder.globalJSON, "global", "", "Global context as a JSON object")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the full compiled result as JSON")

	return cmd
}

func (c *compileCommander) run(ref string) error {
	slug, version := SplitRef(ref)
	if c.version != "" {
		version = c.version
	}

	payload, global, err := Payloads(c.vars, c.varsJSON, c.globalJSON)
	if err != nil {
		return err
	}

	log := logger.CLI(c.debug, nil)

	st, err := store.Open(c.promptsDir, nil)
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	stored, err := st.Get(slug, version)
	if err != nil {
		return err
	}
	log.Debug("resolved prompt", "slug", stored.Slug, "version", stored.Version)

	input := st.CompileInput(stored, payload, global)
	compiled, err := prompt.Compile(&input)
	if err != nil {
		return err
	}
	log.Debug("compiled", "variables", len(compiled.Schema))

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(compiled)
	}

	if compiled.Kind == prompt.KindChat {
		for _, m := range compiled.Messages {
			fmt.Printf("[%s]\n%s\n\n", m.Role, m.Content)
		}
		return nil
	}

	fmt.Println(compiled.Content)
	return nil
}

// SplitRef splits a "slug[@version]" argument.
func SplitRef(ref string) (slug, version string) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '@' {
			return ref[:i], ref[i+1:]
		}
	}
	return ref, ""
}

// Payloads parses the shared --var/--vars/--global flags.
func Payloads(vars []string, varsJSON, globalJSON string) (payload, global map[string]any, err error) {
	fromFlags, err := cliargs.ParseAssignments(vars)
	if err != nil {
		return nil, nil, err
	}
	fromJSON, err := cliargs.DecodeJSON(varsJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("--vars: %w", err)
	}
	global, err = cliargs.DecodeJSON(globalJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("--global: %w", err)
	}
	return cliargs.Merge(fromJSON, fromFlags), global, nil
}
