// ABOUTME: Configuration loading for the copilot bot
// ABOUTME: Loads TOML config with environment variable expansion; .env files are auto-loaded first

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the complete bot configuration.
type Config struct {
	Discord Discord `toml:"discord"`
	Pieces  Pieces  `toml:"pieces"`
	GitHub  GitHub  `toml:"github"`
	Logging Logging `toml:"logging"`
}

// Discord holds the bot account credentials.
type Discord struct {
	Token    string `toml:"token"`
	ClientID string `toml:"client_id"`
}

// Pieces holds the Pieces OS connection settings.
type Pieces struct {
	BaseURL string `toml:"base_url"`
}

// GitHub holds the support-repo ingestion settings. Owner and Repo
// default to the Pieces support repository.
type GitHub struct {
	Token          string `toml:"token"`
	Owner          string `toml:"owner"`
	Repo           string `toml:"repo"`
	RefreshOnReady bool   `toml:"refresh_on_ready"`
}

// Logging holds logging configuration.
type Logging struct {
	Level string `toml:"level"`
}

// Load reads config from the given path, expanding ${VAR} environment
// references. A .env file in the working directory is loaded first so
// its variables are visible to the expansion; a missing .env is fine.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// applyDefaults fills optional fields.
func (c *Config) applyDefaults() {
	if c.GitHub.Owner == "" {
		c.GitHub.Owner = "pieces-app"
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = "support"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that required config fields are present.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Pieces.BaseURL == "" {
		return fmt.Errorf("pieces.base_url is required")
	}
	if !strings.HasPrefix(c.Pieces.BaseURL, "http://") && !strings.HasPrefix(c.Pieces.BaseURL, "https://") {
		return fmt.Errorf("pieces.base_url must use http or https scheme")
	}
	if c.GitHub.RefreshOnReady && c.GitHub.Token == "" {
		return fmt.Errorf("github.token is required when github.refresh_on_ready is enabled")
	}
	return nil
}
