// Package pieces is a REST client for a local Pieces OS instance. It
// implements the conversation-store surfaces the copilot core consumes:
// conversation create/prompt/rename and message sentiment, plus the
// asset operations the ingestion pipeline uses.
package pieces
