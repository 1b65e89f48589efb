// ABOUTME: ReplyComposer builds outbound reply payloads
// ABOUTME: Pure construction of body text, rating embed and feedback controls

package copilot

// followUpNote is appended to every reply so users know how to continue
// the conversation.
const followUpNote = "**Note:** You can ask a follow up question by replying to this message or @ mentioning me again :speech_balloon:"

// Rating embed attached to every reply.
const (
	ratingEmbedColor       = 0x0099FF
	ratingEmbedDescription = "Was this response helpful? Please let us know by reacting below."
)

// Feedback control labels. The selected icon replaces the neutral thumb
// when the recorded sentiment matches the control.
const (
	labelLike     = "\U0001F44D" // 👍
	labelDislike  = "\U0001F44E" // 👎
	labelSelected = "✅"
)

// Compose builds the outbound payload for one answer.
//
// The marker line is emitted only when conversationID is non-empty, which
// must be exactly the reply that introduces a new conversation to a
// thread; later replies in the same thread omit it because the marker
// already exists earlier in history.
func Compose(answer, answerMessageID, conversationID string, sentiment Sentiment) Payload {
	body := answer + "\n\n" + followUpNote
	if conversationID != "" {
		body = Marker(conversationID) + "\n\n" + body
	}

	return Payload{
		Body: body,
		Embed: Embed{
			Color:       ratingEmbedColor,
			Description: ratingEmbedDescription,
		},
		Controls: Controls(answerMessageID, sentiment),
	}
}

// Controls renders both feedback controls for an answer message. Control
// state is derived from the sentiment passed in, never cached: at most
// one control shows the selected icon.
func Controls(answerMessageID string, sentiment Sentiment) []Control {
	like := labelLike
	if sentiment == SentimentPositive {
		like = labelSelected
	}
	dislike := labelDislike
	if sentiment == SentimentNegative {
		dislike = labelSelected
	}

	return []Control{
		{CustomID: answerMessageID + ":like", Label: like, Style: ControlStylePrimary},
		{CustomID: answerMessageID + ":dislike", Label: dislike, Style: ControlStyleDanger},
	}
}
