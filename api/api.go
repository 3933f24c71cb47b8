package api

import (
	"net"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/promptlane/promptlane/pkg/engine"
	"github.com/promptlane/promptlane/pkg/store"
)

// Server is the API server for compiling and executing prompts.
type Server struct {
	config Config
	store  *store.Store
	engine *engine.Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The store and engine are injected to allow sharing with other
// components (e.g., the CLI when embedding the server).
func NewServer(config Config, st *store.Store, eng *engine.Engine, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  st,
		engine: eng,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/prompts", s.handleListPrompts)
	app.Post("/v1/compile", s.handleCompile)
	app.Post("/v1/prompts/:slug/compile", s.handleCompilePrompt)
	app.Post("/v1/execute", s.handleExecute)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		zap.String("listen", listener.Addr().String()),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
