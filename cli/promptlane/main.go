package main

import (
	"os"

	promptlanecmder "github.com/promptlane/promptlane/cmd/promptlane"
)

func main() {
	cmd := promptlanecmder.NewPromptlaneCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
