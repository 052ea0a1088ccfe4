package model

import "time"

// Note represents a row in the `notes` table plus its tag set from
// `note_tags`. UserID never changes after creation; every operation that
// touches a note verifies it against the authenticated caller first.
//
// Summary is written at most once: a later summarize call returns the
// stored text instead of calling the upstream model again. ShareToken is
// present exactly when IsShared is true.
type Note struct {
	ID         uint64    // notes.id
	UserID     uint64    // notes.user_id (immutable owner)
	Title      string    // notes.title
	Content    string    // notes.content
	Tags       []string  // note_tags.tag, trimmed, deduplicated
	Summary    *string   // notes.summary (nullable, set-once)
	IsPinned   bool      // notes.is_pinned
	IsShared   bool      // notes.is_shared
	ShareToken *string   // notes.share_token (nullable, unique)
	CreatedAt  time.Time // notes.created_at
	UpdatedAt  time.Time // notes.updated_at
}

// TagCount is one entry of the per-owner tag frequency table.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats aggregates an owner's dashboard numbers. MostUsedTags holds at most
// the ten most frequent tags, count-descending with deterministic ties.
type Stats struct {
	TotalNotes      int        `json:"totalNotes"`
	TotalSummarized int        `json:"totalSummarized"`
	PinnedNotes     int        `json:"pinnedNotes"`
	MostUsedTags    []TagCount `json:"mostUsedTags"`
}
