// ABOUTME: Tests for the Pieces OS REST client
// ABOUTME: Exercises conversation create/prompt and sentiment round trips against a fake server

package pieces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/copilot"
)

// fakePiecesServer is a minimal in-memory Pieces OS.
type fakePiecesServer struct {
	t *testing.T

	conversations map[string]*Conversation
	messages      map[string]*ConversationMessage
	nextMessageID int

	assets     []Asset
	assetSeeds []SeededAsset

	answerText  string
	questionIn  []QGPTQuestionInput
	renameCalls []string
}

func newFakePiecesServer(t *testing.T) (*fakePiecesServer, *httptest.Server) {
	f := &fakePiecesServer{
		t:             t,
		conversations: make(map[string]*Conversation),
		messages:      make(map[string]*ConversationMessage),
		answerText:    "generated answer",
	}
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakePiecesServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/conversations/create":
		var seed SeededConversation
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&seed))
		conv := &Conversation{
			ID:       "conv-1",
			Name:     seed.Name,
			Messages: &ConversationMessages{Indices: map[string]int{}},
		}
		f.conversations[conv.ID] = conv
		writeJSON(w, conv)

	case r.Method == http.MethodGet && r.URL.Path == "/conversation/conv-1":
		writeJSON(w, f.conversations["conv-1"])

	case r.Method == http.MethodPost && r.URL.Path == "/conversation/conv-1/rename":
		f.renameCalls = append(f.renameCalls, "conv-1")
		conv := f.conversations["conv-1"]
		conv.Name = "Renamed Conversation"
		writeJSON(w, conv)

	case r.Method == http.MethodPost && r.URL.Path == "/messages/create":
		var seed SeededConversationMessage
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&seed))
		f.nextMessageID++
		msg := &ConversationMessage{
			ID:           fmt.Sprintf("msg-%d", f.nextMessageID),
			Role:         seed.Role,
			Fragment:     &seed.Fragment,
			Conversation: &seed.Conversation,
		}
		f.messages[msg.ID] = msg
		conv := f.conversations[seed.Conversation.ID]
		conv.Messages.Indices[msg.ID] = len(conv.Messages.Indices)
		writeJSON(w, msg)

	case r.Method == http.MethodPost && r.URL.Path == "/qgpt/question":
		var in QGPTQuestionInput
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		f.questionIn = append(f.questionIn, in)
		writeJSON(w, QGPTQuestionOutput{
			Answers: QGPTAnswers{Iterable: []QGPTAnswer{{Text: f.answerText}}},
		})

	case r.Method == http.MethodGet && len(r.URL.Path) > len("/message/") && r.URL.Path[:len("/message/")] == "/message/":
		id := r.URL.Path[len("/message/"):]
		msg, ok := f.messages[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, msg)

	case r.Method == http.MethodPost && r.URL.Path == "/assets/create":
		var seed SeededAsset
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&seed))
		f.assetSeeds = append(f.assetSeeds, seed)
		asset := Asset{ID: fmt.Sprintf("asset-%d", len(f.assets)+1)}
		if seed.Metadata != nil {
			asset.Name = seed.Metadata.Name
		}
		f.assets = append(f.assets, asset)
		writeJSON(w, asset)

	case r.Method == http.MethodGet && r.URL.Path == "/assets":
		writeJSON(w, Assets{Iterable: f.assets})

	case r.Method == http.MethodPost && r.URL.Path == "/assets/search":
		var in struct {
			Query string `json:"query"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&in))
		// Entries without an asset stand in for stale search hits.
		entries := []map[string]any{{"asset": nil}}
		for _, asset := range f.assets {
			if strings.Contains(strings.ToLower(asset.Name), strings.ToLower(in.Query)) {
				entries = append(entries, map[string]any{"asset": asset})
			}
		}
		writeJSON(w, map[string]any{"iterable": entries})

	case r.Method == http.MethodPost && r.URL.Path == "/message/update":
		var msg ConversationMessage
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&msg))
		f.messages[msg.ID] = &msg
		writeJSON(w, &msg)

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestCreateConversation_WithFirstMessage(t *testing.T) {
	fake, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	created, err := client.CreateConversation(context.Background(), "QA Bot DM", "How do I install?")
	require.NoError(t, err)

	assert.Equal(t, "conv-1", created.ConversationID)
	assert.Equal(t, "generated answer", created.Answer)
	assert.NotEmpty(t, created.AnswerMessageID)

	// The opening prompt is recorded as user + assistant messages.
	user := fake.messages["msg-1"]
	require.NotNil(t, user)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "How do I install?", user.Fragment.String.Raw)

	bot := fake.messages[created.AnswerMessageID]
	require.NotNil(t, bot)
	assert.Equal(t, RoleAssistant, bot.Role)
	assert.Equal(t, "generated answer", bot.Fragment.String.Raw)

	require.Len(t, fake.questionIn, 1)
	assert.Equal(t, "How do I install?", fake.questionIn[0].Query)
}

func TestCreateConversation_WithoutFirstMessage(t *testing.T) {
	fake, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	created, err := client.CreateConversation(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "conv-1", created.ConversationID)
	assert.Empty(t, created.Answer)
	assert.Empty(t, created.AnswerMessageID)
	assert.Empty(t, fake.questionIn)
}

func TestPromptConversation_SeedsPriorMessages(t *testing.T) {
	fake, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	ctx := context.Background()
	_, err := client.CreateConversation(ctx, "QA Bot Thread", "first question")
	require.NoError(t, err)

	answer, err := client.PromptConversation(ctx, "conv-1", "second question")
	require.NoError(t, err)
	assert.Equal(t, "generated answer", answer.Text)
	assert.NotEmpty(t, answer.MessageID)

	// The second question is grounded on the first exchange.
	require.Len(t, fake.questionIn, 2)
	second := fake.questionIn[1]
	assert.Equal(t, "second question", second.Query)
	require.Len(t, second.Relevant.Iterable, 2)
	assert.Equal(t, "first question", second.Relevant.Iterable[0].Seed.Asset.Format.Fragment.String.Raw)
	assert.Equal(t, "generated answer", second.Relevant.Iterable[1].Seed.Asset.Format.Fragment.String.Raw)

	// Each prompt attempts a best-effort rename.
	assert.Len(t, fake.renameCalls, 2)
}

func TestSentimentRoundTrip(t *testing.T) {
	fake, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	ctx := context.Background()
	created, err := client.CreateConversation(ctx, "QA Bot DM", "hello")
	require.NoError(t, err)

	s, err := client.MessageSentiment(ctx, created.AnswerMessageID)
	require.NoError(t, err)
	assert.Equal(t, copilot.SentimentUnset, s)

	require.NoError(t, client.SetMessageSentiment(ctx, created.AnswerMessageID, copilot.SentimentPositive))
	s, err = client.MessageSentiment(ctx, created.AnswerMessageID)
	require.NoError(t, err)
	assert.Equal(t, copilot.SentimentPositive, s)

	// The update carried the snapshotted message state, not a bare patch.
	assert.Equal(t, RoleAssistant, fake.messages[created.AnswerMessageID].Role)

	require.NoError(t, client.SetMessageSentiment(ctx, created.AnswerMessageID, copilot.SentimentNegative))
	s, err = client.MessageSentiment(ctx, created.AnswerMessageID)
	require.NoError(t, err)
	assert.Equal(t, copilot.SentimentNegative, s)
}

func TestIngestAsset(t *testing.T) {
	fake, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	asset, err := client.IngestAsset(context.Background(), "Install guide", "Run the installer.")
	require.NoError(t, err)

	assert.Equal(t, "asset-1", asset.ID)
	assert.Equal(t, "Install guide", asset.Name)

	require.Len(t, fake.assetSeeds, 1)
	seed := fake.assetSeeds[0]
	assert.Equal(t, "Install guide", seed.Metadata.Name)
	assert.Equal(t, "Run the installer.", seed.Format.Fragment.String.Raw)
}

func TestSavedMaterials(t *testing.T) {
	_, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	ctx := context.Background()
	_, err := client.IngestAsset(ctx, "Install guide", "body one")
	require.NoError(t, err)
	_, err = client.IngestAsset(ctx, "FAQ", "body two")
	require.NoError(t, err)

	materials, err := client.SavedMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, "Install guide", materials[0].Name)
	assert.Equal(t, "FAQ", materials[1].Name)
}

func TestSearchSavedMaterials_SkipsEntriesWithoutAsset(t *testing.T) {
	_, srv := newFakePiecesServer(t)
	client := NewClient(srv.URL, nil)

	ctx := context.Background()
	_, err := client.IngestAsset(ctx, "Install guide", "body one")
	require.NoError(t, err)
	_, err = client.IngestAsset(ctx, "FAQ", "body two")
	require.NoError(t, err)

	// The fake always returns one asset-less entry; it must not survive.
	matches, err := client.SearchSavedMaterials(ctx, "install")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Install guide", matches[0].Name)

	matches, err = client.SearchSavedMaterials(ctx, "nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_BackendErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, nil)

	_, err := client.CreateConversation(context.Background(), "name", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
