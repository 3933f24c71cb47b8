// Package runcmder provides the run command for compiling a prompt and
// executing it against the upstream provider.
package runcmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	compilecmder "github.com/promptlane/promptlane/cmd/promptlane/compile"
	"github.com/promptlane/promptlane/pkg/cliui"
	"github.com/promptlane/promptlane/pkg/config"
	"github.com/promptlane/promptlane/pkg/dotdir"
	"github.com/promptlane/promptlane/pkg/engine"
	"github.com/promptlane/promptlane/pkg/llm"
	"github.com/promptlane/promptlane/pkg/llm/transport"
	"github.com/promptlane/promptlane/pkg/logger"
	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/store"
)

type runCommander struct {
	version    string
	promptsDir string
	upstream   string
	apiKey     string
	model      string
	vars       []string
	varsJSON   string
	globalJSON string
	logFile    string
	noStream   bool
	markdown   bool
	debug      bool
}

const runLongDesc string = `Compile a stored prompt and execute it against the upstream provider.

Output streams to the terminal as it arrives; use --no-stream to wait for
the complete response instead.

Examples:
  promptlane run greeting --var name=Ada
  promptlane run summarize@2.1.0 --vars '{"topic":"semver"}' --model openai/gpt-4o
  promptlane run report --no-stream --markdown`

const runShortDesc string = "Compile and execute a prompt"

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run <slug>[@version]",
		Short: runShortDesc,
		Long:  runLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.DefaultFlagSet, []string{
				config.FlagUpstream,
				config.FlagAPIKey,
				config.FlagModel,
				config.FlagPromptsDir,
			})

			cmder.upstream = v.GetString("provider.upstream")
			cmder.apiKey = v.GetString("provider.api_key")
			cmder.model = v.GetString("provider.model")
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

	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagPromptsDir, &cmder.promptsDir)
	cmd.Flags().StringVar(&cmder.version, "version", "", "Prompt version (default: latest)")
	cmd.Flags().StringArrayVar(&cmder.vars, "var", nil, "Variable assignment key=value (repeatable)")
	cmd.Flags().StringVar(&cmder.varsJSON, "vars", "", "Variables as a JSON object")
	cmd.Flags().StringVar(&cmder.globalJSON, "global", "", "Global context as a JSON object")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write diagnostics as JSON to this file")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the complete response instead of streaming")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the response as markdown (implies --no-stream)")

	return cmd
}

func (c *runCommander) run(ref string) error {
	slug, version := compilecmder.SplitRef(ref)
	if c.version != "" {
		version = c.version
	}

	payload, global, err := compilecmder.Payloads(c.vars, c.varsJSON, c.globalJSON)
	if err != nil {
		return err
	}

	log := logger.CLI(c.debug, nil)
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		log = logger.CLI(c.debug, f)
	}

	st, err := store.Open(c.promptsDir, nil)
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	stored, err := st.Get(slug, version)
	if err != nil {
		return err
	}
	log.Debug("resolved prompt", "slug", stored.Slug, "version", stored.Version)

	var compiled *prompt.Compiled
	if err := cliui.Step(os.Stderr, fmt.Sprintf("compiling %s@%s", stored.Slug, stored.Version), func() error {
		input := st.CompileInput(stored, payload, global)
		var cerr error
		compiled, cerr = prompt.Compile(&input)
		return cerr
	}); err != nil {
		return err
	}

	tr := transport.NewHTTP(transport.Config{
		BaseURL: c.upstream,
		APIKey:  c.apiKey,
	}, nil)
	eng := engine.New(tr, nil)

	modelConfig := llm.ModelConfig{
		Model:  c.model,
		Stream: !c.noStream && !c.markdown,
	}
	log.Debug("executing",
		"model", modelConfig.Model,
		"upstream", c.upstream,
		"stream", modelConfig.Stream,
	)

	if modelConfig.Stream {
		return c.streamOut(eng, compiled, modelConfig)
	}
	return c.bufferedOut(eng, log, compiled, modelConfig)
}

func (c *runCommander) streamOut(eng *engine.Engine, compiled *prompt.Compiled, config llm.ModelConfig) error {
	stream, err := eng.ExecuteStream(context.Background(), compiled, config)
	if err != nil {
		return err
	}
	defer stream.Close()

	for ev := range stream.Events() {
		if ev.Type == llm.EventMessage && ev.Delta != nil {
			fmt.Print(ev.Delta.Content)
		}
	}
	fmt.Println()

	return stream.Err()
}

func (c *runCommander) bufferedOut(eng *engine.Engine, log *slog.Logger, compiled *prompt.Compiled, config llm.ModelConfig) error {
	var completion *llm.Completion
	if err := cliui.Step(os.Stderr, "executing", func() error {
		var eerr error
		completion, eerr = eng.Execute(context.Background(), compiled, config)
		return eerr
	}); err != nil {
		return err
	}
	if completion.Usage != nil && completion.Usage.TotalTokens != nil {
		log.Debug("completed", "id", completion.ID, "total_tokens", *completion.Usage.TotalTokens)
	}

	text := completion.Text()
	if c.markdown {
		rendered, err := cliui.RenderMarkdown(text)
		if err == nil {
			text = rendered
		}
	}

	fmt.Println(text)
	return nil
}
