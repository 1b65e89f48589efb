// ABOUTME: Tests for CSV ingestion
// ABOUTME: Covers header keying, ragged rows and missing files

package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCSV(t *testing.T) {
	path := writeCSV(t, "title,body\nInstall guide,Run the installer\nFAQ,Common questions\n")

	rows, err := ParseCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Install guide", rows[0]["title"])
	assert.Equal(t, "Run the installer", rows[0]["body"])
	assert.Equal(t, "FAQ", rows[1]["title"])
}

func TestParseCSV_RaggedRows(t *testing.T) {
	path := writeCSV(t, "title,body,extra\nonly title\n")

	rows, err := ParseCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "only title", rows[0]["title"])
	_, hasBody := rows[0]["body"]
	assert.False(t, hasBody)
}

func TestParseCSV_EmptyFile(t *testing.T) {
	rows, err := ParseCSV(writeCSV(t, ""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCSV_MissingFile(t *testing.T) {
	_, err := ParseCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
