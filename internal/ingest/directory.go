// ABOUTME: Documentation-directory ingestion
// ABOUTME: Walks a docs tree for markdown files and extracts title, raw and Base64 content

package ingest

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Document is one ingested markdown file, ready to seed an asset.
type Document struct {
	ID        string
	Title     string
	Raw       string
	Base64    string
	Extension string
}

// Generated API-reference trees are excluded from ingestion; they are
// machine output with no support value.
var skippedSubtrees = []string{
	"reference/typescript/apis",
	"reference/typescript/models",
	"reference/dart/apis",
	"reference/dart/models",
	"reference/kotlin/apis",
	"reference/kotlin/models",
	"reference/python/apis",
	"reference/python/models",
}

// WalkMarkdown collects every .md and .mdx file under dir, skipping the
// generated API-reference subtrees. Files without a discoverable title
// are logged and skipped.
func WalkMarkdown(dir string, logger *slog.Logger) ([]Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var docs []Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if isSkippedSubtree(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".mdx" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		title := documentTitle(content)
		if title == "" {
			logger.Warn("no title found in document, skipping", "path", path)
			return nil
		}

		docs = append(docs, Document{
			ID:        uuid.New().String(),
			Title:     title,
			Raw:       string(content),
			Base64:    base64.StdEncoding.EncodeToString(content),
			Extension: strings.TrimPrefix(ext, "."),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	return docs, nil
}

func isSkippedSubtree(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, skipped := range skippedSubtrees {
		if strings.Contains(normalized, skipped) {
			return true
		}
	}
	return false
}

// documentTitle extracts a document's title: YAML frontmatter first,
// then the first markdown heading.
func documentTitle(content []byte) string {
	if title := frontmatterTitle(content); title != "" {
		return title
	}
	return firstHeading(content)
}

// frontmatterTitle parses the title out of a leading YAML frontmatter
// block delimited by "---" lines.
func frontmatterTitle(content []byte) string {
	s := string(content)
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return ""
	}

	rest := s[strings.Index(s, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return ""
	}

	var meta struct {
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Title)
}

// firstHeading parses the markdown and returns the text of the first
// heading, if any.
func firstHeading(content []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				sb.Write(t.Segment.Value(content))
			}
		}
		title = strings.TrimSpace(sb.String())
		return ast.WalkStop, nil
	})
	return title
}
