// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/promptlane/promptlane/api"
	"github.com/promptlane/promptlane/pkg/config"
	"github.com/promptlane/promptlane/pkg/dotdir"
	"github.com/promptlane/promptlane/pkg/engine"
	"github.com/promptlane/promptlane/pkg/llm/transport"
	"github.com/promptlane/promptlane/pkg/logger"
	"github.com/promptlane/promptlane/pkg/store"
)

type ServeCommander struct {
	listen     string
	upstream   string
	apiKey     string
	model      string
	promptsDir string
	watch      bool
	debug      bool
	logger     *zap.Logger
}

const serveLongDesc string = `Run the promptlane API server.

The server loads prompt definitions from the prompts directory, compiles
them on demand, and executes them against the configured upstream
provider. With --watch (the default) the registry reloads whenever a
prompt file changes.`

const serveShortDesc string = "Run the promptlane API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
				config.FlagAPIListen,
				config.FlagUpstream,
				config.FlagAPIKey,
				config.FlagModel,
				config.FlagPromptsDir,
				config.FlagWatch,
			})

			cmder.listen = v.GetString("api.listen")
			cmder.upstream = v.GetString("provider.upstream")
			cmder.apiKey = v.GetString("provider.api_key")
			cmder.model = v.GetString("provider.model")
			cmder.promptsDir = v.GetString("prompts.dir")
			cmder.watch = v.GetBool("prompts.watch")

			if cmder.promptsDir == "" {
				cmder.promptsDir, err = dotdir.NewManager().PromptsDir(configDir)
				if err != nil {
					return err
				}
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.DefaultFlagSet, config.FlagPromptsDir, &cmder.promptsDir)
	config.AddBoolFlag(cmd, config.DefaultFlagSet, config.FlagWatch, &cmder.watch)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	st, err := store.Open(c.promptsDir, c.logger)
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	tr := transport.NewHTTP(transport.Config{
		BaseURL: c.upstream,
		APIKey:  c.apiKey,
	}, c.logger)
	eng := engine.New(tr, c.logger)

	server := api.NewServer(api.Config{
		ListenAddr: c.listen,
		Model:      c.model,
	}, st, eng, c.logger)

	c.logger.Info("starting promptlane",
		zap.String("listen", c.listen),
		zap.String("upstream", c.upstream),
		zap.String("prompts_dir", c.promptsDir),
		zap.Bool("watch", c.watch),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	if c.watch {
		go func() {
			if err := st.Watch(ctx); err != nil && ctx.Err() == nil {
				errChan <- fmt.Errorf("prompt watcher error: %w", err)
			}
		}()
	}

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		return server.Shutdown()
	}
}
