package main

import (
	"os"

	"github.com/ai-guards/ai-guards/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
