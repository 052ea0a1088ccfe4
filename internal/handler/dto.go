package handler

import (
	"time"

	"github.com/smartnotes/api/internal/model"
)

// noteJSON is the wire shape of a note owned by the caller.
type noteJSON struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Summary   *string   `json:"summary"`
	IsPinned  bool      `json:"isPinned"`
	IsShared  bool      `json:"isShared"`
	ShareID   *string   `json:"shareId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteJSON(n *model.Note) noteJSON {
	return noteJSON{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags,
		Summary:   n.Summary,
		IsPinned:  n.IsPinned,
		IsShared:  n.IsShared,
		ShareID:   n.ShareToken,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteListJSON(notes []*model.Note) []noteJSON {
	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteJSON(n))
	}
	return out
}
