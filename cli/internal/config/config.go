// Package config loads odoogen configuration from config files, environment
// variables and .env files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem seam used by config and generation; tests swap in
// a memory-backed implementation.
var AppFs = afero.NewOsFs()

// ConfigName is the base name of the config file (.odoogen.yaml).
const ConfigName = ".odoogen"

// Config holds everything a batch invocation needs.
type Config struct {
	Endpoint     string
	Database     string
	Login        string
	APIKey       string
	OutputDir    string
	Models       []string
	Concurrency  int
	FetchTimeout time.Duration
}

// Load reads configuration in precedence order: flags are bound by the
// commands, then environment (ODOOGEN_*), then config file, then defaults.
// Credentials may also come from ODOO_URL / ODOO_API_KEY in the environment
// or a .env file.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(ConfigName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "odoogen"))

	viper.SetEnvPrefix("ODOOGEN")
	viper.AutomaticEnv()

	viper.SetDefault("output", "./generated")
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("fetch_timeout", "30s")

	// Missing config file is fine; flags and env may carry everything.
	_ = viper.ReadInConfig()

	// .env files supply credentials in development setups.
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		Endpoint:     viper.GetString("endpoint"),
		Database:     viper.GetString("database"),
		Login:        viper.GetString("login"),
		APIKey:       viper.GetString("api_key"),
		OutputDir:    viper.GetString("output"),
		Models:       viper.GetStringSlice("models"),
		Concurrency:  viper.GetInt("concurrency"),
		FetchTimeout: viper.GetDuration("fetch_timeout"),
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv("ODOO_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ODOO_API_KEY")
	}

	return cfg, nil
}

// Save writes the non-secret configuration to .odoogen.yaml in the current
// directory. The API key is deliberately left out; it belongs in .env.
func Save(cfg *Config) error {
	viper.Set("endpoint", cfg.Endpoint)
	viper.Set("database", cfg.Database)
	viper.Set("login", cfg.Login)
	viper.Set("output", cfg.OutputDir)
	viper.Set("models", cfg.Models)
	viper.Set("concurrency", cfg.Concurrency)

	return viper.WriteConfigAs(ConfigName + ".yaml")
}

// Path returns the config file viper resolved, if any.
func Path() string {
	return viper.ConfigFileUsed()
}
