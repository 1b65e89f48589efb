// ABOUTME: ConversationRouter drives the reply flow for classified inbound messages
// ABOUTME: Resolves thread-to-conversation bindings via transcript markers and orchestrates backend calls

package copilot

import (
	"context"
	"log/slog"
)

// Conversation names reported to the backend. The backend may rename a
// conversation after its first prompt; these are just the seeds.
const (
	dmConversationName     = "QA Bot DM"
	threadConversationName = "QA Bot Thread"
	replyThreadName        = "QA Bot Reply"
)

// ConversationStore is the backend surface the router depends on.
type ConversationStore interface {
	CreateConversation(ctx context.Context, name, firstMessage string) (*Created, error)
	PromptConversation(ctx context.Context, conversationID, message string) (*Answer, error)
}

// Platform is the messaging surface the router drives.
type Platform interface {
	// ThreadHistory returns the full, unpaginated message history of a
	// thread in platform delivery order.
	ThreadHistory(ctx context.Context, threadID string) ([]Message, error)
	// Reply sends a payload as a direct reply to a specific message.
	Reply(ctx context.Context, channelID, messageID string, p Payload) error
	// Send posts a payload into a channel or thread.
	Send(ctx context.Context, channelID string, p Payload) error
	// StartThread opens a new thread anchored to a message and returns
	// the new thread's channel ID.
	StartThread(ctx context.Context, channelID, messageID, name string) (string, error)
	// Typing signals a typing indicator to a channel or thread.
	// Failures are logged by the implementation, not surfaced.
	Typing(ctx context.Context, channelID string)
}

// Router classifies nothing itself; it receives already-classified
// inbound messages and produces at most one reply per message. All
// failures are logged and swallowed here so no event handler crashes
// the process.
type Router struct {
	store    ConversationStore
	platform Platform
	logger   *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(store ConversationStore, platform Platform, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		store:    store,
		platform: platform,
		logger:   logger.With("component", "router"),
	}
}

// HandleMessage dispatches one inbound message. It never returns an
// error: a failed backend or platform call degrades to no reply sent.
func (r *Router) HandleMessage(ctx context.Context, in Inbound) {
	switch in.Origin {
	case OriginDirect:
		r.replyDirect(ctx, in)
	case OriginThread:
		r.replyInThread(ctx, in)
	case OriginChannel:
		r.replyNewThread(ctx, in)
	}
}

// replyDirect answers a DM. Direct messages need no thread-recovery
// mechanism, so the reply carries no marker.
func (r *Router) replyDirect(ctx context.Context, in Inbound) {
	r.platform.Typing(ctx, in.ChannelID)

	created, err := r.store.CreateConversation(ctx, dmConversationName, in.Content)
	if err != nil {
		r.logger.Error("conversation create failed", "channel", in.ChannelID, "error", err)
		return
	}

	payload := Compose(created.Answer, created.AnswerMessageID, "", SentimentUnset)
	if err := r.platform.Reply(ctx, in.ChannelID, in.MessageID, payload); err != nil {
		r.logger.Error("failed to reply to direct message", "channel", in.ChannelID, "error", err)
		return
	}

	r.logger.Info("replied to direct message", "conversation_id", created.ConversationID)
}

// replyInThread answers a mention inside an existing thread, recovering
// the conversation ID from the transcript when one was written before.
func (r *Router) replyInThread(ctx context.Context, in Inbound) {
	r.platform.Typing(ctx, in.ChannelID)

	history, err := r.platform.ThreadHistory(ctx, in.ChannelID)
	if err != nil {
		// Without history we cannot tell whether a marker exists, and
		// creating a fresh conversation could shadow one that does.
		r.logger.Error("history fetch failed, cannot determine conversation marker",
			"thread", in.ChannelID, "error", err)
		return
	}

	conversationID, found := FindConversationID(history)
	if !found {
		r.logger.Debug("no conversation marker in thread history", "thread", in.ChannelID)

		created, err := r.store.CreateConversation(ctx, threadConversationName, in.Content)
		if err != nil {
			r.logger.Error("conversation create failed", "thread", in.ChannelID, "error", err)
			return
		}

		// This reply becomes the authoritative marker message.
		payload := Compose(created.Answer, created.AnswerMessageID, created.ConversationID, SentimentUnset)
		if err := r.platform.Reply(ctx, in.ChannelID, in.MessageID, payload); err != nil {
			r.logger.Error("failed to reply in thread", "thread", in.ChannelID, "error", err)
			return
		}

		r.logger.Info("started conversation in existing thread",
			"thread", in.ChannelID, "conversation_id", created.ConversationID)
		return
	}

	r.logger.Debug("found conversation marker in thread history",
		"thread", in.ChannelID, "conversation_id", conversationID)

	answer, err := r.store.PromptConversation(ctx, conversationID, in.Content)
	if err != nil {
		r.logger.Error("conversation prompt failed",
			"thread", in.ChannelID, "conversation_id", conversationID, "error", err)
		return
	}

	// The marker already exists earlier in history, so this reply omits it.
	payload := Compose(answer.Text, answer.MessageID, "", SentimentUnset)
	if err := r.platform.Send(ctx, in.ChannelID, payload); err != nil {
		r.logger.Error("failed to send into thread", "thread", in.ChannelID, "error", err)
		return
	}

	r.logger.Info("replied in thread", "thread", in.ChannelID, "conversation_id", conversationID)
}

// replyNewThread answers a mention on a plain channel message by opening
// a thread anchored to it and replying inside.
func (r *Router) replyNewThread(ctx context.Context, in Inbound) {
	r.platform.Typing(ctx, in.ChannelID)

	created, err := r.store.CreateConversation(ctx, threadConversationName, in.Content)
	if err != nil {
		r.logger.Error("conversation create failed", "channel", in.ChannelID, "error", err)
		return
	}

	threadID, err := r.platform.StartThread(ctx, in.ChannelID, in.MessageID, replyThreadName)
	if err != nil {
		r.logger.Error("failed to start thread",
			"channel", in.ChannelID, "message", in.MessageID, "error", err)
		return
	}

	payload := Compose(created.Answer, created.AnswerMessageID, created.ConversationID, SentimentUnset)
	if err := r.platform.Send(ctx, threadID, payload); err != nil {
		r.logger.Error("failed to send into new thread", "thread", threadID, "error", err)
		return
	}

	r.logger.Info("started thread with new conversation",
		"thread", threadID, "conversation_id", created.ConversationID)
}
