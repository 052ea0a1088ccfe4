// Package queue defines the note activity events exchanged over the message
// broker, plus the publisher and consumer that move them.
package queue

// Actions recorded on the note activity queue.
const (
	ActionCreated    = "created"
	ActionDeleted    = "deleted"
	ActionPinned     = "pinned"
	ActionUnpinned   = "unpinned"
	ActionShared     = "shared"
	ActionUnshared   = "unshared"
	ActionSummarized = "summarized"
	ActionExported   = "exported"
)

// NoteEvent is published after a note operation succeeds. It carries enough
// for downstream consumers to log or trigger analytics without querying the
// primary database. Note content is deliberately excluded.
type NoteEvent struct {
	Action     string `json:"action"`
	NoteID     uint64 `json:"note_id"`
	UserID     uint64 `json:"user_id"`
	Title      string `json:"title"`
	OccurredAt string `json:"occurred_at"` // RFC3339 UTC
}
