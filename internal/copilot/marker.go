// ABOUTME: Conversation marker format and transcript scanning
// ABOUTME: The marker embedded in bot replies is the only durable record of the thread-to-conversation binding

package copilot

import "regexp"

// markerPattern matches the conversation marker a prior bot reply wrote
// into the thread.
var markerPattern = regexp.MustCompile(`Conversation ID: (\S+)`)

// Marker renders the transcript marker line for a conversation.
func Marker(conversationID string) string {
	return "Conversation ID: " + conversationID
}

// FindConversationID scans a thread's history in delivery order and
// returns the conversation ID captured from the first message containing
// a marker. The second return is false when no message matches.
//
// History order is whatever the platform delivered; with concurrent
// first-mentions a thread can hold more than one marker, and whichever
// matches first wins.
func FindConversationID(history []Message) (string, bool) {
	for _, m := range history {
		if match := markerPattern.FindStringSubmatch(m.Content); match != nil {
			return match[1], true
		}
	}
	return "", false
}
