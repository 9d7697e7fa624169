// Package commands wires up the odoogen CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/modelkit/odoogen/cli/internal/version"
	"github.com/modelkit/odoogen/internal/debug"
)

var debugEnabled bool

var rootCmd = &cobra.Command{
	Use:   "odoogen",
	Short: "Generate typed UI components from Odoo model schemas",
	Long: `odoogen introspects the schema of Odoo models over JSON-RPC and emits
typed UI artifacts: type definitions, form components, list components and
field sub-components. Re-running is safe: generated files are compared
against what is on disk, custom regions are preserved, and writes happen
only on real change.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		debug.Init(debugEnabled)
	})
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Enable debug logging to stderr")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
