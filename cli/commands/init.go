package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/modelkit/odoogen/cli/internal/config"
	"github.com/modelkit/odoogen/cli/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create an odoogen configuration",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ui.PrintHeader("odoogen", "init")

	cfg := &config.Config{OutputDir: "./generated", Concurrency: 4}
	var apiKey, models string

	questions := []*survey.Question{
		{
			Name:     "endpoint",
			Prompt:   &survey.Input{Message: "Server URL:", Default: "http://localhost:8069"},
			Validate: survey.Required,
		},
		{
			Name:     "database",
			Prompt:   &survey.Input{Message: "Database:"},
			Validate: survey.Required,
		},
		{
			Name:     "login",
			Prompt:   &survey.Input{Message: "Login:"},
			Validate: survey.Required,
		},
		{
			Name:   "output",
			Prompt: &survey.Input{Message: "Output directory:", Default: "./generated"},
		},
	}

	answers := struct {
		Endpoint string
		Database string
		Login    string
		Output   string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{
		Message: "Models to generate (comma separated, empty to decide later):",
	}, &models); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Password{
		Message: "API key (stored in .env, empty to skip):",
	}, &apiKey); err != nil {
		return err
	}

	cfg.Endpoint = answers.Endpoint
	cfg.Database = answers.Database
	cfg.Login = answers.Login
	if answers.Output != "" {
		cfg.OutputDir = answers.Output
	}
	for _, model := range strings.Split(models, ",") {
		if trimmed := strings.TrimSpace(model); trimmed != "" {
			cfg.Models = append(cfg.Models, trimmed)
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	ui.PrintSuccess("wrote %s.yaml", config.ConfigName)

	if apiKey != "" {
		if err := writeEnvKey(apiKey); err != nil {
			return err
		}
		ui.PrintSuccess("stored ODOO_API_KEY in .env")
	}

	ui.PrintInfo("next: `odoogen models` to explore, `odoogen generate` to emit artifacts")
	return nil
}

// writeEnvKey appends the API key to .env, creating the file if needed.
func writeEnvKey(apiKey string) error {
	f, err := os.OpenFile(".env", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open .env: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "ODOO_API_KEY=%s\n", apiKey); err != nil {
		return fmt.Errorf("write .env: %w", err)
	}
	return nil
}
