// ABOUTME: Shared types for the copilot conversation core
// ABOUTME: Sentiment values, inbound message classification, reply payloads and feedback controls

package copilot

import "fmt"

// Sentiment is the feedback value attached to one answer message.
type Sentiment int

const (
	SentimentUnset Sentiment = iota
	SentimentPositive
	SentimentNegative
)

// String returns the Pieces OS wire value for the sentiment.
func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "LIKE"
	case SentimentNegative:
		return "DISLIKE"
	default:
		return ""
	}
}

// ParseSentiment normalizes a control polarity token to a sentiment value.
// Accepted tokens are "like" and "dislike"; anything else is an error.
func ParseSentiment(token string) (Sentiment, error) {
	switch token {
	case "like":
		return SentimentPositive, nil
	case "dislike":
		return SentimentNegative, nil
	default:
		return SentimentUnset, fmt.Errorf("unknown polarity token %q", token)
	}
}

// Origin classifies where an inbound message arrived.
type Origin int

const (
	// OriginDirect is a direct message to the bot.
	OriginDirect Origin = iota
	// OriginThread is a mention inside an existing thread.
	OriginThread
	// OriginChannel is a mention on a plain (non-thread) channel message.
	OriginChannel
)

// Inbound is one classified platform message handed to the router.
type Inbound struct {
	Origin    Origin
	ChannelID string // channel or thread the message arrived in
	MessageID string // the triggering message
	Content   string
}

// Message is one entry of a thread's history, in platform delivery order.
type Message struct {
	ID      string
	Content string
}

// ControlStyle selects the visual style of a feedback control.
type ControlStyle int

const (
	ControlStylePrimary ControlStyle = iota
	ControlStyleDanger
)

// Control is one interactive feedback button attached to a reply.
type Control struct {
	CustomID string
	Label    string
	Style    ControlStyle
}

// Embed is the rating hint attached to every reply. Data shape only;
// rendering is up to the platform layer.
type Embed struct {
	Color       int
	Description string
}

// Payload is one outbound reply: body text, rating embed and both
// feedback controls.
type Payload struct {
	Body     string
	Embed    Embed
	Controls []Control
}

// Created is the result of opening a new conversation. Answer and
// AnswerMessageID are set when an opening prompt was supplied.
type Created struct {
	ConversationID  string
	Answer          string
	AnswerMessageID string
}

// Answer is the backend's response to a prompt: the generated text and
// the identifier of the answer message it was recorded under.
type Answer struct {
	Text      string
	MessageID string
}
