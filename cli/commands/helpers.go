package commands

import (
	"fmt"

	"github.com/modelkit/odoogen/cli/internal/config"
	"github.com/modelkit/odoogen/diagnostics"
	"github.com/modelkit/odoogen/odoo"
	"github.com/modelkit/odoogen/schema/selector"
)

// buildClient constructs the schema client from configuration, failing early
// on missing connection settings.
func buildClient(cfg *config.Config) (*odoo.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no server endpoint configured; set `endpoint` in %s.yaml or ODOO_URL", config.ConfigName)
	}
	if cfg.Database == "" || cfg.Login == "" {
		return nil, fmt.Errorf("database and login must be configured; run `odoogen init`")
	}
	return odoo.NewClient(cfg.Endpoint, cfg.Database, cfg.Login, cfg.APIKey), nil
}

// resolveSelectors parses the model selectors from CLI args, falling back to
// the configured model list.
func resolveSelectors(args []string, cfg *config.Config) ([]selector.Selector, error) {
	exprs := args
	if len(exprs) == 0 {
		exprs = cfg.Models
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("no models requested; pass selectors or set `models` in %s.yaml", config.ConfigName)
	}
	return selector.ParseAll(exprs)
}

// printDiagnostics prints the diagnostic digest, if any.
func printDiagnostics(collection *diagnostics.Collection) {
	if collection.Len() == 0 {
		return
	}
	fmt.Println()
	fmt.Print(collection.ToPrettyString())
}
