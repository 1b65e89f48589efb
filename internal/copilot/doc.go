// Package copilot implements the conversation core of the bot: thread
// classification and reply orchestration, transcript-marker recovery of
// conversation IDs, reply composition with feedback controls, and
// feedback-activation handling.
//
// # Durable state
//
// The binding between a chat thread and a backend conversation is not
// stored in a database. The first bot reply in a thread embeds a marker
// line ("Conversation ID: <id>") in its body, and re-engaging the thread
// recovers the ID by scanning the thread's message history. Two
// near-simultaneous first mentions in one thread can each miss the
// other's marker and create separate conversations; whichever marker
// scans first on later reads wins. This race is accepted.
//
// # Surfaces
//
// The router consumes a ConversationStore (the backend) and a Platform
// (the chat service); the feedback handler consumes a SentimentStore and
// a per-activation Interaction. All implementations live outside this
// package so the core stays testable with fakes.
package copilot
