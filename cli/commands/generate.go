package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/modelkit/odoogen/cli/internal/config"
	"github.com/modelkit/odoogen/cli/internal/ui"
	"github.com/modelkit/odoogen/cli/internal/watch"
	"github.com/modelkit/odoogen/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate [selectors...]",
	Short: "Generate UI artifacts for the selected models",
	Long: `Generate type definitions, form and list components, and field
sub-components for the selected models.

Selectors name a model and may restrict fields:

  odoogen generate res.partner
  odoogen generate "res.partner[name,email]" sale.order
  odoogen generate "res.partner[-message_ids]"

Without selectors, the configured model list is used.`,
	RunE: runGenerate,
}

var (
	generateOutput      string
	generateConcurrency int
	generateTimeout     time.Duration
	generateWatch       bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory (default from config)")
	generateCmd.Flags().IntVarP(&generateConcurrency, "concurrency", "c", 0, "Max models generated in parallel (default from config)")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "Per-model schema fetch timeout (default from config)")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when the config file changes")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if generateWatch {
		return runGenerateWatch(ctx, args)
	}
	return generateOnce(ctx, args)
}

func generateOnce(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyGenerateFlags(cfg)

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}
	selectors, err := resolveSelectors(args, cfg)
	if err != nil {
		return err
	}

	ui.PrintHeader("odoogen", "generate")
	ui.PrintInfo("server: %s, database: %s", cfg.Endpoint, cfg.Database)
	ui.PrintInfo("output: %s, models: %d", cfg.OutputDir, len(selectors))
	fmt.Println()

	runner, err := generator.NewRunner(client, generator.Options{
		OutputDir:    cfg.OutputDir,
		Concurrency:  cfg.Concurrency,
		FetchTimeout: cfg.FetchTimeout,
		Fs:           config.AppFs,
	})
	if err != nil {
		return err
	}

	spinner := ui.Spinner("Generating artifacts...")
	summary, err := runner.Run(ctx, selectors)
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, model := range summary.Models {
		if model.Skipped {
			ui.PrintWarning("%s", model.Line())
		} else {
			ui.PrintSuccess("%s", model.Line())
		}
	}
	printDiagnostics(summary.Diagnostics())

	if summary.Failed() {
		return fmt.Errorf("generation finished with failures")
	}
	return nil
}

func runGenerateWatch(ctx context.Context, args []string) error {
	ui.PrintHeader("odoogen", "watch")

	run := func() error {
		if err := generateOnce(ctx, args); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	}
	if err := run(); err != nil {
		return err
	}

	configPath := config.Path()
	if configPath == "" {
		return fmt.Errorf("watch mode needs a config file; run `odoogen init` first")
	}

	watcher, err := watch.New(configPath, run)
	if err != nil {
		return err
	}
	defer watcher.Stop()
	watcher.Start()

	ui.PrintInfo("watching %s for changes, Ctrl+C to stop", configPath)
	<-ctx.Done()
	ui.PrintInfo("stopping watch mode")
	return nil
}

func applyGenerateFlags(cfg *config.Config) {
	if generateOutput != "" {
		cfg.OutputDir = generateOutput
	}
	if generateConcurrency > 0 {
		cfg.Concurrency = generateConcurrency
	}
	if generateTimeout > 0 {
		cfg.FetchTimeout = generateTimeout
	}
}
