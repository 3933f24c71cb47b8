// Promptlane CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/promptlane/internal/dagger"
)

// Promptlane is the main module for the Promptlane CI/CD pipeline
type Promptlane struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Promptlane CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Promptlane {
	return &Promptlane{
		Source: source,
	}
}

// goContainer returns an Alpine-based Go container with the project source
// mounted and module and build caches attached.
//
// It is the shared foundation for tests, builds, and linting.
func (p *Promptlane) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithWorkdir("/src").
		WithDirectory("/src", p.Source)
}

// Test runs the promptlane unit tests via "go test"
func (p *Promptlane) Test(ctx context.Context) (string, error) {
	return p.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
