// ABOUTME: Batch ingestion CLI for the copilot knowledge base
// ABOUTME: Pushes docs trees, CSV exports and GitHub support issues into Pieces OS as assets

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/config"
	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/ingest"
	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/pieces"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "path to bot config (defaults to the bot's config path)")
		docsDir    = flag.String("dir", "", "ingest .md/.mdx files under this directory")
		csvPath    = flag.String("csv", "", "ingest rows of this header-keyed CSV file")
		issues     = flag.Bool("issues", false, "ingest closed GitHub support issues")
		search     = flag.String("search", "", "search saved materials and print the matches")
	)
	flag.Parse()

	if *docsDir == "" && *csvPath == "" && !*issues && *search == "" {
		flag.Usage()
		return fmt.Errorf("nothing to do: pass -dir, -csv, -issues or -search")
	}

	if *configPath == "" {
		*configPath = getConfigPath()
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", *configPath, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := pieces.NewClient(cfg.Pieces.BaseURL, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var total int

	if *docsDir != "" {
		n, err := ingestDocs(ctx, client, *docsDir, logger)
		if err != nil {
			return err
		}
		total += n
	}

	if *csvPath != "" {
		n, err := ingestCSV(ctx, client, *csvPath)
		if err != nil {
			return err
		}
		total += n
	}

	if *issues {
		n, err := ingestIssues(ctx, client, cfg, logger)
		if err != nil {
			return err
		}
		total += n
	}

	green := color.New(color.FgGreen)
	if total > 0 {
		// Read the library back so a silent ingestion failure is visible.
		materials, err := client.SavedMaterials(ctx)
		if err != nil {
			return fmt.Errorf("listing saved materials: %w", err)
		}
		green.Print("    ▶ ")
		fmt.Printf("Ingested %d assets into %s (library now holds %d)\n",
			total, cfg.Pieces.BaseURL, len(materials))
	}

	if *search != "" {
		matches, err := client.SearchSavedMaterials(ctx, *search)
		if err != nil {
			return fmt.Errorf("searching saved materials: %w", err)
		}
		green.Print("    ▶ ")
		fmt.Printf("%d saved materials match %q\n", len(matches), *search)
		for _, match := range matches {
			fmt.Printf("      %s  %s\n", match.ID, match.Name)
		}
	}

	return nil
}

func ingestDocs(ctx context.Context, client *pieces.Client, dir string, logger *slog.Logger) (int, error) {
	docs, err := ingest.WalkMarkdown(dir, logger)
	if err != nil {
		return 0, fmt.Errorf("walking docs directory: %w", err)
	}

	for _, doc := range docs {
		if _, err := client.IngestAsset(ctx, doc.Title, doc.Raw); err != nil {
			return 0, fmt.Errorf("ingesting %q: %w", doc.Title, err)
		}
	}
	return len(docs), nil
}

func ingestCSV(ctx context.Context, client *pieces.Client, path string) (int, error) {
	rows, err := ingest.ParseCSV(path)
	if err != nil {
		return 0, fmt.Errorf("parsing csv: %w", err)
	}

	for i, row := range rows {
		name := row["title"]
		if name == "" {
			name = "CSV row " + strconv.Itoa(i+1)
		}
		if _, err := client.IngestAsset(ctx, name, formatRow(row)); err != nil {
			return 0, fmt.Errorf("ingesting csv row %d: %w", i+1, err)
		}
	}
	return len(rows), nil
}

func ingestIssues(ctx context.Context, client *pieces.Client, cfg *config.Config, logger *slog.Logger) (int, error) {
	github := ingest.NewGitHubClient(cfg.GitHub.Token, logger)
	issues, err := github.ClosedIssues(ctx, cfg.GitHub.Owner, cfg.GitHub.Repo)
	if err != nil {
		return 0, fmt.Errorf("fetching closed issues: %w", err)
	}

	for _, issue := range issues {
		name := fmt.Sprintf("%s/%s#%d", cfg.GitHub.Owner, cfg.GitHub.Repo, issue.Number)
		body := issue.Body
		if len(issue.Comments) > 0 {
			body += "\n\n" + strings.Join(issue.Comments, "\n\n")
		}
		if _, err := client.IngestAsset(ctx, name, body); err != nil {
			return 0, fmt.Errorf("ingesting issue %s: %w", name, err)
		}
	}
	return len(issues), nil
}

// formatRow renders a CSV row as "key: value" lines.
func formatRow(row ingest.Row) string {
	var sb strings.Builder
	for key, value := range row {
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	return sb.String()
}

// getConfigPath mirrors the bot's config path resolution.
func getConfigPath() string {
	if envPath := os.Getenv("COPILOT_BOT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "copilot-bot.toml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "pieces", "copilot-bot.toml")
}
