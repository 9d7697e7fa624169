package main

import (
	"os"

	"github.com/modelkit/odoogen/cli/commands"
	"github.com/modelkit/odoogen/cli/internal/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
