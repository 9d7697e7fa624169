package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/modelkit/odoogen/cli/internal/config"
	"github.com/modelkit/odoogen/cli/internal/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available on the server",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	spinner := ui.Spinner("Fetching model registry...")
	models, err := client.ListModels(ctx)
	spinner.Stop()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(models))
	for _, model := range models {
		rows = append(rows, []string{model.Name, model.Label})
	}
	ui.PrintTable([]string{"Model", "Label"}, rows)
	ui.PrintInfo("%d models", len(models))
	return nil
}
