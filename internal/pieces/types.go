// ABOUTME: Wire types for the Pieces OS REST API
// ABOUTME: Conversations, conversation messages, QGPT question payloads and assets

package pieces

// Application identifies this client to Pieces OS on every tracked call.
type Application struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Platform  string `json:"platform"`
	Onboarded bool   `json:"onboarded"`
	Privacy   string `json:"privacy"`
}

// Fragment carries raw text content.
type Fragment struct {
	String *FragmentString `json:"string,omitempty"`
}

// FragmentString is the raw-text leaf of a fragment.
type FragmentString struct {
	Raw string `json:"raw"`
}

// Conversation is the backend's conversation resource.
type Conversation struct {
	ID       string                `json:"id"`
	Name     string                `json:"name,omitempty"`
	Messages *ConversationMessages `json:"messages,omitempty"`
}

// ConversationMessages lists the message IDs of a conversation keyed by
// their position index.
type ConversationMessages struct {
	Indices map[string]int `json:"indices,omitempty"`
}

// ConversationMessage is one message within a conversation. Sentiment is
// the Pieces enum value ("LIKE"/"DISLIKE") or empty when unset.
type ConversationMessage struct {
	ID           string    `json:"id"`
	Role         string    `json:"role,omitempty"`
	Fragment     *Fragment `json:"fragment,omitempty"`
	Conversation *RefID    `json:"conversation,omitempty"`
	Sentiment    string    `json:"sentiment,omitempty"`
}

// RefID is a bare reference to another resource by ID.
type RefID struct {
	ID string `json:"id"`
}

// Message roles.
const (
	RoleUser      = "USER"
	RoleAssistant = "ASSISTANT"
)

// SeededConversation is the request body for creating a conversation.
type SeededConversation struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Pipeline map[string]any `json:"pipeline,omitempty"`
}

// SeededConversationMessage is the request body for appending a message
// to a conversation.
type SeededConversationMessage struct {
	Role         string   `json:"role"`
	Fragment     Fragment `json:"fragment"`
	Conversation RefID    `json:"conversation"`
}

// QGPTQuestionInput asks the model a question with relevant seeds for
// grounding.
type QGPTQuestionInput struct {
	Query    string         `json:"query"`
	Pipeline map[string]any `json:"pipeline,omitempty"`
	Relevant QGPTRelevant   `json:"relevant"`
}

// QGPTRelevant wraps the relevant seed list.
type QGPTRelevant struct {
	Iterable []RelevantSeed `json:"iterable"`
}

// RelevantSeed is one grounding seed for a question.
type RelevantSeed struct {
	Seed Seed `json:"seed"`
}

// Seed wraps an asset used as model context.
type Seed struct {
	Type  string     `json:"type"`
	Asset *SeedAsset `json:"asset,omitempty"`
}

// SeedAsset carries the application identity and a text fragment.
type SeedAsset struct {
	Application Application `json:"application"`
	Format      SeedFormat  `json:"format"`
	Metadata    *Metadata   `json:"metadata,omitempty"`
}

// SeedFormat wraps the fragment of a seed asset.
type SeedFormat struct {
	Fragment Fragment `json:"fragment"`
}

// Metadata names a seeded asset.
type Metadata struct {
	Name string `json:"name,omitempty"`
}

// QGPTQuestionOutput is the model's response to a question.
type QGPTQuestionOutput struct {
	Answers QGPTAnswers `json:"answers"`
}

// QGPTAnswers wraps the answer list.
type QGPTAnswers struct {
	Iterable []QGPTAnswer `json:"iterable"`
}

// QGPTAnswer is one generated answer.
type QGPTAnswer struct {
	Text string `json:"text"`
}

// Asset is a saved material in Pieces OS. Only the fields this bot reads
// are modeled.
type Asset struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Assets wraps an asset list.
type Assets struct {
	Iterable []Asset `json:"iterable"`
}

// SeededAsset is the request body for creating an asset from ingested
// content.
type SeededAsset struct {
	Application Application `json:"application"`
	Format      SeedFormat  `json:"format"`
	Metadata    *Metadata   `json:"metadata,omitempty"`
}

// searchedAssets is the response shape of an asset search; entries with
// no asset are skipped.
type searchedAssets struct {
	Iterable []struct {
		Asset *Asset `json:"asset,omitempty"`
	} `json:"iterable"`
}
