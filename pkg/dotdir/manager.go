// Package dotdir manages the .promptlane/ and ~/.promptlane directories.
//
// The dot directory holds config.toml and, by default, the prompts/
// directory the registry loads from.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the promptlane directory.
	dirName = ".promptlane"

	// promptsDirName is the default prompt registry directory inside a
	// .promptlane/ directory.
	promptsDirName = "prompts"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .promptlane/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.promptlane/ dir
//  3. Home ~/.promptlane/ dir
//  4. If none found, attempt to create ~/.promptlane/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating promptlane directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// PromptsDir returns the prompts/ directory inside the resolved
// .promptlane/ directory, creating it if needed.
func (m *Manager) PromptsDir(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, promptsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating prompts directory %s: %w", dir, err)
	}
	return dir, nil
}

// localDirExists checks whether a .promptlane/ directory exists in the
// current working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
