// ABOUTME: Pieces OS REST client, the bot's ConversationStore
// ABOUTME: Conversation create/prompt/rename, message sentiment and asset operations

package pieces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/copilot"
)

// trackedApplication is the application identity sent with every seeded
// call. "DEFAULT" is the shared ID for open source applications.
var trackedApplication = Application{
	ID:        "DEFAULT",
	Name:      "OPEN_SOURCE",
	Version:   "0.0.1",
	Platform:  "MACOS",
	Onboarded: false,
	Privacy:   "ANONYMOUS",
}

// copilotPipeline selects the contextualized dialog pipeline for both
// conversation creation and questions.
var copilotPipeline = map[string]any{
	"conversation": map[string]any{
		"contextualizedCodeDialog": map[string]any{},
	},
}

// Client talks to a local Pieces OS instance.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a Pieces OS client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger.With("component", "pieces"),
	}
}

// CreateConversation opens a new copilot conversation. When firstMessage
// is non-empty the conversation is immediately prompted with it and the
// result carries the answer text and answer message ID.
func (c *Client) CreateConversation(ctx context.Context, name, firstMessage string) (*copilot.Created, error) {
	if name == "" {
		name = "New Conversation"
	}

	var conv Conversation
	seed := SeededConversation{
		Name:     name,
		Type:     "COPILOT",
		Pipeline: copilotPipeline,
	}
	if err := c.do(ctx, http.MethodPost, "/conversations/create", seed, &conv); err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	created := &copilot.Created{ConversationID: conv.ID}
	if firstMessage == "" {
		return created, nil
	}

	answer, err := c.PromptConversation(ctx, conv.ID, firstMessage)
	if err != nil {
		return nil, fmt.Errorf("prompting new conversation %s: %w", conv.ID, err)
	}
	created.Answer = answer.Text
	created.AnswerMessageID = answer.MessageID
	return created, nil
}

// PromptConversation asks a question within an existing conversation:
// the user message is recorded, the model is asked with the prior
// conversation messages as grounding seeds, and the generated answer is
// recorded as an assistant message. The conversation rename afterwards
// is best-effort.
func (c *Client) PromptConversation(ctx context.Context, conversationID, message string) (*copilot.Answer, error) {
	prior, err := c.conversationRawMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", conversationID, err)
	}

	if _, err := c.createMessage(ctx, conversationID, RoleUser, message); err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}

	relevant := make([]RelevantSeed, 0, len(prior))
	for _, raw := range prior {
		relevant = append(relevant, RelevantSeed{Seed: Seed{
			Type: "SEEDED_ASSET",
			Asset: &SeedAsset{
				Application: trackedApplication,
				Format:      SeedFormat{Fragment: Fragment{String: &FragmentString{Raw: raw}}},
			},
		}})
	}

	var out QGPTQuestionOutput
	question := QGPTQuestionInput{
		Query:    message,
		Pipeline: copilotPipeline,
		Relevant: QGPTRelevant{Iterable: relevant},
	}
	if err := c.do(ctx, http.MethodPost, "/qgpt/question", question, &out); err != nil {
		return nil, fmt.Errorf("asking question: %w", err)
	}
	if len(out.Answers.Iterable) == 0 {
		return nil, fmt.Errorf("question returned no answers")
	}
	text := out.Answers.Iterable[0].Text

	botMessage, err := c.createMessage(ctx, conversationID, RoleAssistant, text)
	if err != nil {
		return nil, fmt.Errorf("recording assistant message: %w", err)
	}

	if _, err := c.RenameConversation(ctx, conversationID); err != nil {
		c.logger.Debug("conversation rename failed", "conversation_id", conversationID, "error", err)
	}

	return &copilot.Answer{Text: text, MessageID: botMessage.ID}, nil
}

// RenameConversation asks the backend to regenerate the conversation
// name from its content and returns the new name.
func (c *Client) RenameConversation(ctx context.Context, conversationID string) (string, error) {
	var conv Conversation
	path := "/conversation/" + url.PathEscape(conversationID) + "/rename"
	if err := c.do(ctx, http.MethodPost, path, nil, &conv); err != nil {
		return "", fmt.Errorf("renaming conversation %s: %w", conversationID, err)
	}
	return conv.Name, nil
}

// SetMessageSentiment attaches a sentiment to an answer message. The
// message is snapshotted first so the update carries its current state.
func (c *Client) SetMessageSentiment(ctx context.Context, messageID string, s copilot.Sentiment) error {
	msg, err := c.getMessage(ctx, messageID)
	if err != nil {
		return fmt.Errorf("loading message %s: %w", messageID, err)
	}

	msg.Sentiment = s.String()
	if err := c.do(ctx, http.MethodPost, "/message/update", msg, nil); err != nil {
		return fmt.Errorf("updating message %s sentiment: %w", messageID, err)
	}
	return nil
}

// MessageSentiment reads the sentiment currently attached to a message.
func (c *Client) MessageSentiment(ctx context.Context, messageID string) (copilot.Sentiment, error) {
	msg, err := c.getMessage(ctx, messageID)
	if err != nil {
		return copilot.SentimentUnset, fmt.Errorf("loading message %s: %w", messageID, err)
	}

	switch msg.Sentiment {
	case "LIKE":
		return copilot.SentimentPositive, nil
	case "DISLIKE":
		return copilot.SentimentNegative, nil
	default:
		return copilot.SentimentUnset, nil
	}
}

// IngestAsset creates a saved material from ingested content.
func (c *Client) IngestAsset(ctx context.Context, name, raw string) (*Asset, error) {
	seed := SeededAsset{
		Application: trackedApplication,
		Format:      SeedFormat{Fragment: Fragment{String: &FragmentString{Raw: raw}}},
		Metadata:    &Metadata{Name: name},
	}

	var asset Asset
	if err := c.do(ctx, http.MethodPost, "/assets/create", seed, &asset); err != nil {
		return nil, fmt.Errorf("creating asset %q: %w", name, err)
	}
	return &asset, nil
}

// SavedMaterials returns all saved materials.
func (c *Client) SavedMaterials(ctx context.Context) ([]Asset, error) {
	var assets Assets
	if err := c.do(ctx, http.MethodGet, "/assets", nil, &assets); err != nil {
		return nil, fmt.Errorf("fetching saved materials: %w", err)
	}
	return assets.Iterable, nil
}

// SearchSavedMaterials searches saved materials by query, skipping any
// search results with no asset attached.
func (c *Client) SearchSavedMaterials(ctx context.Context, query string) ([]Asset, error) {
	var found searchedAssets
	body := map[string]string{"query": query}
	if err := c.do(ctx, http.MethodPost, "/assets/search", body, &found); err != nil {
		return nil, fmt.Errorf("searching saved materials: %w", err)
	}

	assets := make([]Asset, 0, len(found.Iterable))
	for _, entry := range found.Iterable {
		if entry.Asset != nil {
			assets = append(assets, *entry.Asset)
		}
	}
	return assets, nil
}

// conversationRawMessages returns the raw text of every message in the
// conversation, in index order.
func (c *Client) conversationRawMessages(ctx context.Context, conversationID string) ([]string, error) {
	var conv Conversation
	path := "/conversation/" + url.PathEscape(conversationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &conv); err != nil {
		return nil, err
	}
	if conv.Messages == nil || len(conv.Messages.Indices) == 0 {
		return nil, nil
	}

	// Indices map message ID to its position; order by position.
	ids := make([]string, 0, len(conv.Messages.Indices))
	for id := range conv.Messages.Indices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return conv.Messages.Indices[ids[i]] < conv.Messages.Indices[ids[j]]
	})

	var raw []string
	for _, id := range ids {
		msg, err := c.getMessage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading message %s: %w", id, err)
		}
		if msg.Fragment == nil || msg.Fragment.String == nil || msg.Fragment.String.Raw == "" {
			continue
		}
		raw = append(raw, msg.Fragment.String.Raw)
	}
	return raw, nil
}

// createMessage appends a message to a conversation.
func (c *Client) createMessage(ctx context.Context, conversationID, role, raw string) (*ConversationMessage, error) {
	seed := SeededConversationMessage{
		Role:         role,
		Fragment:     Fragment{String: &FragmentString{Raw: raw}},
		Conversation: RefID{ID: conversationID},
	}

	var msg ConversationMessage
	if err := c.do(ctx, http.MethodPost, "/messages/create", seed, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// getMessage snapshots one conversation message.
func (c *Client) getMessage(ctx context.Context, messageID string) (*ConversationMessage, error) {
	var msg ConversationMessage
	path := "/message/" + url.PathEscape(messageID)
	if err := c.do(ctx, http.MethodGet, path, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// do performs one JSON request against Pieces OS. A nil in sends no
// body; a nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pieces os returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
