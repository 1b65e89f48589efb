// Package discord owns the Discord gateway session. It classifies
// inbound events (direct message, mention in a thread, mention on a
// plain channel message), implements the copilot Platform and
// Interaction surfaces over the REST API, and guards every event
// handler so a malformed event never takes down the event loop.
package discord
