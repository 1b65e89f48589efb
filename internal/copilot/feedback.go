// ABOUTME: FeedbackHandler processes feedback-control activations
// ABOUTME: Parses composite control IDs, records sentiment and re-renders controls in place

package copilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrMalformedControlID is returned when a control's composite ID does
// not split into exactly two colon-delimited fields, or the polarity
// token is unrecognized.
var ErrMalformedControlID = errors.New("malformed control id")

// SentimentStore is the backend surface feedback handling depends on.
type SentimentStore interface {
	SetMessageSentiment(ctx context.Context, messageID string, s Sentiment) error
	MessageSentiment(ctx context.Context, messageID string) (Sentiment, error)
}

// Interaction is one control activation awaiting a response. The
// platform layer wraps its native interaction object in this.
type Interaction interface {
	// Ack acknowledges the activation so the platform does not time it out.
	Ack(ctx context.Context) error
	// UpdateControls replaces the controls on the original message in place.
	UpdateControls(ctx context.Context, controls []Control) error
}

// ParseControlID splits a composite control identifier into the target
// message ID and the normalized sentiment.
func ParseControlID(customID string) (string, Sentiment, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 2 {
		return "", SentimentUnset, fmt.Errorf("%w: %q", ErrMalformedControlID, customID)
	}
	sentiment, err := ParseSentiment(parts[1])
	if err != nil {
		return "", SentimentUnset, fmt.Errorf("%w: %q: %v", ErrMalformedControlID, customID, err)
	}
	return parts[0], sentiment, nil
}

// FeedbackHandler records user feedback on answer messages.
type FeedbackHandler struct {
	store  SentimentStore
	logger *slog.Logger
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(store SentimentStore, logger *slog.Logger) *FeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackHandler{
		store:  store,
		logger: logger.With("component", "feedback"),
	}
}

// HandleActivation processes one control activation. The interaction is
// acknowledged before any backend call; a malformed ID makes the
// activation a no-op with zero backend calls. Activating the same
// control repeatedly is safe: sentiment is re-set to the same value and
// the controls re-render identically.
func (h *FeedbackHandler) HandleActivation(ctx context.Context, customID string, ix Interaction) {
	if err := ix.Ack(ctx); err != nil {
		h.logger.Error("failed to acknowledge activation", "custom_id", customID, "error", err)
		return
	}

	messageID, sentiment, err := ParseControlID(customID)
	if err != nil {
		h.logger.Error("ignoring activation", "error", err)
		return
	}

	if err := h.store.SetMessageSentiment(ctx, messageID, sentiment); err != nil {
		h.logger.Error("failed to record sentiment",
			"message_id", messageID, "sentiment", sentiment.String(), "error", err)
		return
	}

	// Re-render from the now-current value, not the one we just wrote.
	current, err := h.store.MessageSentiment(ctx, messageID)
	if err != nil {
		h.logger.Error("sentiment recorded but re-render skipped",
			"message_id", messageID, "error", err)
		return
	}

	if err := ix.UpdateControls(ctx, Controls(messageID, current)); err != nil {
		h.logger.Error("failed to update controls", "message_id", messageID, "error", err)
		return
	}

	h.logger.Info("recorded feedback", "message_id", messageID, "sentiment", sentiment.String())
}
