// ABOUTME: Platform surface implementation over the Discord REST API
// ABOUTME: History pagination, sends, replies, thread creation, typing and interaction edits

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mason-at-pieces/pieces-copilot-discord-bot/internal/copilot"
)

// historyPageSize is Discord's maximum messages-per-request.
const historyPageSize = 100

// threadAutoArchiveMinutes is how long a reply thread stays active
// without new messages before Discord archives it.
const threadAutoArchiveMinutes = 60

// ThreadHistory fetches the complete message history of a thread, paging
// backwards until exhausted. Messages keep Discord's delivery order
// (newest first).
func (b *Bridge) ThreadHistory(ctx context.Context, threadID string) ([]copilot.Message, error) {
	var history []copilot.Message
	beforeID := ""

	for {
		page, err := b.session.ChannelMessages(threadID, historyPageSize, beforeID, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetching thread history: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			history = append(history, copilot.Message{ID: msg.ID, Content: msg.Content})
		}
		if len(page) < historyPageSize {
			break
		}
		beforeID = page[len(page)-1].ID
	}

	return history, nil
}

// Reply sends a payload as a direct reply to a message.
func (b *Bridge) Reply(ctx context.Context, channelID, messageID string, p copilot.Payload) error {
	send := messageSend(p)
	send.Reference = &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	}
	if _, err := b.session.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	return nil
}

// Send posts a payload into a channel or thread.
func (b *Bridge) Send(ctx context.Context, channelID string, p copilot.Payload) error {
	if _, err := b.session.ChannelMessageSendComplex(channelID, messageSend(p), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// StartThread opens a new public thread anchored to a message.
func (b *Bridge) StartThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	thread, err := b.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: threadAutoArchiveMinutes,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("starting thread: %w", err)
	}
	return thread.ID, nil
}

// Typing signals a typing indicator. Failures are logged, not surfaced:
// a missing indicator never blocks a reply.
func (b *Bridge) Typing(ctx context.Context, channelID string) {
	if err := b.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
		b.logger.Debug("failed to send typing indicator", "channel", channelID, "error", err)
	}
}

// interaction wraps one component activation for the feedback handler.
type interaction struct {
	session *discordgo.Session
	event   *discordgo.Interaction
}

// Ack defers the message update so Discord does not time the
// interaction out while the backend call runs.
func (ix *interaction) Ack(ctx context.Context) error {
	err := ix.session.InteractionRespond(ix.event, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("deferring interaction: %w", err)
	}
	return nil
}

// UpdateControls swaps the feedback controls on the original message
// in place.
func (ix *interaction) UpdateControls(ctx context.Context, controls []copilot.Control) error {
	components := componentRows(controls)
	_, err := ix.session.InteractionResponseEdit(ix.event, &discordgo.WebhookEdit{
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("editing interaction response: %w", err)
	}
	return nil
}

// messageSend converts a payload into a Discord complex send.
func messageSend(p copilot.Payload) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: p.Body,
		Embeds: []*discordgo.MessageEmbed{{
			Color:       p.Embed.Color,
			Description: p.Embed.Description,
		}},
		Components: componentRows(p.Controls),
	}
}

// componentRows lays the feedback controls out as a single action row.
func componentRows(controls []copilot.Control) []discordgo.MessageComponent {
	if len(controls) == 0 {
		return nil
	}

	buttons := make([]discordgo.MessageComponent, 0, len(controls))
	for _, control := range controls {
		buttons = append(buttons, discordgo.Button{
			Label:    control.Label,
			Style:    buttonStyle(control.Style),
			CustomID: control.CustomID,
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

func buttonStyle(style copilot.ControlStyle) discordgo.ButtonStyle {
	if style == copilot.ControlStyleDanger {
		return discordgo.DangerButton
	}
	return discordgo.PrimaryButton
}
