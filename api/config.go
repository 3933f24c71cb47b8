// Package api provides the HTTP API server for compiling and executing
// prompts from the registry.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string

	// Model is the default model identifier for execute requests that
	// don't specify one.
	Model string
}
