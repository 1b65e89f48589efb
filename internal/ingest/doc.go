// Package ingest collects support knowledge for the copilot backend:
// header-keyed CSV exports, markdown documentation trees (title from
// YAML frontmatter or the first heading, content as raw text and
// Base64), and closed GitHub support issues with their comments. All
// of it is plain batch I/O; uploading the results is the caller's job.
package ingest
