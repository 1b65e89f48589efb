// ABOUTME: Discord bridge wiring the gateway event stream to the copilot core
// ABOUTME: Classifies inbound messages, implements the Platform surface and guards every handler

package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/copilot"
)

// Backend is everything the copilot core needs from the conversation API.
type Backend interface {
	copilot.ConversationStore
	copilot.SentimentStore
}

// Bridge owns the Discord session and routes its events into the
// copilot core.
type Bridge struct {
	session  *discordgo.Session
	router   *copilot.Router
	feedback *copilot.FeedbackHandler
	logger   *slog.Logger

	// ReadyHook, when set, runs once in its own goroutine after the
	// gateway reports ready. Used for the support-issue refresh.
	ReadyHook func(ctx context.Context)

	// ctx is the parent context for event-processing goroutines
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Bridge and its underlying Discord session.
func New(token string, backend Backend, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages

	b := &Bridge{
		session: session,
		logger:  logger.With("component", "discord"),
	}
	b.router = copilot.NewRouter(backend, b, logger)
	b.feedback = copilot.NewFeedbackHandler(backend, logger)

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleMessageCreate)
	session.AddHandler(b.handleInteractionCreate)

	return b, nil
}

// Run opens the gateway connection and blocks until the context is
// cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)
	defer b.cancel()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	b.logger.Info("discord bridge running")

	<-ctx.Done()
	b.logger.Info("shutting down discord bridge")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}
	return nil
}

// guard wraps an event handler body so one malformed event never
// terminates the event loop.
func (b *Bridge) guard(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", event, "panic", r)
		}
	}()
	fn()
}

func (b *Bridge) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.guard("ready", func() {
		b.logger.Info("logged in", "user", r.User.Username, "id", r.User.ID)

		if b.ReadyHook != nil {
			go b.ReadyHook(b.ctx)
		}
	})
}

func (b *Bridge) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.guard("message_create", func() {
		// Ignore our own messages
		if m.Author == nil || m.Author.ID == s.State.User.ID {
			return
		}

		in, ok := b.classify(s, m)
		if !ok {
			return
		}

		b.logger.Debug("handling message",
			"channel", in.ChannelID,
			"message", in.MessageID,
			"origin", int(in.Origin),
		)

		// Process in a goroutine so a slow backend call never blocks
		// the event dispatch.
		go b.router.HandleMessage(b.ctx, in)
	})
}

// classify maps a gateway message to an inbound classification. The
// second return is false for messages the bot should not act on.
func (b *Bridge) classify(s *discordgo.Session, m *discordgo.MessageCreate) (copilot.Inbound, bool) {
	in := copilot.Inbound{
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Content:   m.Content,
	}

	// Messages without a guild are DMs.
	if m.GuildID == "" {
		in.Origin = copilot.OriginDirect
		return in, true
	}

	if !isMentioned(m.Mentions, s.State.User.ID) {
		return copilot.Inbound{}, false
	}

	channel, err := b.channel(s, m.ChannelID)
	if err != nil {
		b.logger.Error("failed to fetch channel", "channel", m.ChannelID, "error", err)
		return copilot.Inbound{}, false
	}

	if channel.IsThread() {
		in.Origin = copilot.OriginThread
	} else {
		in.Origin = copilot.OriginChannel
	}
	return in, true
}

func (b *Bridge) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.guard("interaction_create", func() {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}

		customID := i.MessageComponentData().CustomID
		b.logger.Debug("handling control activation", "custom_id", customID)

		go b.feedback.HandleActivation(b.ctx, customID, &interaction{
			session: s,
			event:   i.Interaction,
		})
	})
}

// channel resolves a channel from state cache, falling back to the API.
func (b *Bridge) channel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if channel, err := s.State.Channel(channelID); err == nil {
		return channel, nil
	}
	return s.Channel(channelID)
}

// isMentioned reports whether the bot user appears in a message's
// mention list.
func isMentioned(mentions []*discordgo.User, botID string) bool {
	for _, user := range mentions {
		if user != nil && user.ID == botID {
			return true
		}
	}
	return false
}
