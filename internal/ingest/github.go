// ABOUTME: GitHub support-repo ingestion
// ABOUTME: Fetches closed issues with their comments via the REST API, paginated to exhaustion

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// issuesPageSize is GitHub's maximum issues-per-page.
const issuesPageSize = 100

// Issue is one closed support issue with its comment bodies.
type Issue struct {
	Number   int
	Body     string
	Comments []string
}

// GitHubClient fetches support issues from the GitHub REST API.
type GitHubClient struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGitHubClient creates a client authenticated with a personal token.
func NewGitHubClient(token string, logger *slog.Logger) *GitHubClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubClient{
		token:   token,
		baseURL: "https://api.github.com",
		client:  &http.Client{},
		logger:  logger.With("component", "github"),
	}
}

// issueResponse is the subset of the issues API this ingestion reads.
type issueResponse struct {
	Number int    `json:"number"`
	Body   string `json:"body"`
}

type commentResponse struct {
	Body string `json:"body"`
}

// ClosedIssues fetches every closed issue of a repository together with
// its comments.
func (g *GitHubClient) ClosedIssues(ctx context.Context, owner, repo string) ([]Issue, error) {
	var issues []Issue

	for page := 1; ; page++ {
		path := fmt.Sprintf("/repos/%s/%s/issues?state=closed&per_page=%d&page=%d",
			owner, repo, issuesPageSize, page)

		var batch []issueResponse
		if err := g.get(ctx, path, &batch); err != nil {
			return nil, fmt.Errorf("listing closed issues page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}

		for _, issue := range batch {
			comments, err := g.issueComments(ctx, owner, repo, issue.Number)
			if err != nil {
				return nil, fmt.Errorf("fetching comments for issue %d: %w", issue.Number, err)
			}
			issues = append(issues, Issue{
				Number:   issue.Number,
				Body:     issue.Body,
				Comments: comments,
			})
		}

		if len(batch) < issuesPageSize {
			break
		}
	}

	g.logger.Debug("fetched closed issues", "owner", owner, "repo", repo, "count", len(issues))
	return issues, nil
}

func (g *GitHubClient) issueComments(ctx context.Context, owner, repo string, number int) ([]string, error) {
	path := "/repos/" + owner + "/" + repo + "/issues/" + strconv.Itoa(number) + "/comments"

	var responses []commentResponse
	if err := g.get(ctx, path, &responses); err != nil {
		return nil, err
	}

	comments := make([]string, 0, len(responses))
	for _, c := range responses {
		comments = append(comments, c.Body)
	}
	return comments, nil
}

func (g *GitHubClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("github returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
