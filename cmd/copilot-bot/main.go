// ABOUTME: Entry point for the copilot Discord bot
// ABOUTME: Bridges Discord DMs and mentions to Pieces OS copilot conversations

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/config"
	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/discord"
	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/ingest"
	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/pieces"
)

const banner = `
    ╭─────────────────────────────────╮
    │                                 │
    │   pieces copilot support bot    │
    │                                 │
    ╰─────────────────────────────────╯
`

// getConfigPath returns the path to the bot config file.
// Priority: COPILOT_BOT_CONFIG env var > XDG_CONFIG_HOME/pieces/copilot-bot.toml > ~/.config/pieces/copilot-bot.toml
func getConfigPath() string {
	if envPath := os.Getenv("COPILOT_BOT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "copilot-bot.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "pieces", "copilot-bot.toml")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := setupLogger(cfg.Logging.Level)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Pieces OS: %s\n", cfg.Pieces.BaseURL)
	if cfg.GitHub.RefreshOnReady {
		green.Print("    ▶ ")
		fmt.Printf("Issues:    %s/%s\n", cfg.GitHub.Owner, cfg.GitHub.Repo)
	}
	fmt.Println()

	backend := pieces.NewClient(cfg.Pieces.BaseURL, logger)

	bridge, err := discord.New(cfg.Discord.Token, backend, logger)
	if err != nil {
		return fmt.Errorf("creating discord bridge: %w", err)
	}

	if cfg.GitHub.RefreshOnReady {
		github := ingest.NewGitHubClient(cfg.GitHub.Token, logger)
		bridge.ReadyHook = func(ctx context.Context) {
			issues, err := github.ClosedIssues(ctx, cfg.GitHub.Owner, cfg.GitHub.Repo)
			if err != nil {
				logger.Error("support issue refresh failed", "error", err)
				return
			}
			logger.Info("refreshed support issues",
				"owner", cfg.GitHub.Owner, "repo", cfg.GitHub.Repo, "count", len(issues))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting bridge")
	return bridge.Run(ctx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
