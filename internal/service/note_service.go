// Package service implements the note lifecycle: CRUD, pin and share
// toggles, summarization, stats and export, all scoped to the authenticated
// owner. Every operation passes through a single ownership guard so a
// mismatch is indistinguishable from a missing note.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/smartnotes/api/internal/apperr"
	"github.com/smartnotes/api/internal/export"
	"github.com/smartnotes/api/internal/model"
	"github.com/smartnotes/api/internal/queue"
	"github.com/smartnotes/api/internal/repository"
	"github.com/smartnotes/api/internal/summarizer"
	"github.com/smartnotes/api/internal/utils"
)

// EventPublisher pushes a note activity event to the broker. Publishing is
// best-effort and never interrupts the request that produced the event.
type EventPublisher func(ctx context.Context, ev queue.NoteEvent) error

// ShareInvalidator drops the cached public response for a share token.
// Revoking a link must take effect immediately, so ToggleShare calls this
// with the old token whenever it turns sharing off.
type ShareInvalidator func(ctx context.Context, token string) error

// NoteService coordinates the note store, the summarization adapter and the
// export renderer.
type NoteService struct {
	notes      *repository.NoteRepo
	users      *repository.UserRepo
	summarizer summarizer.Client
	renderer   export.Renderer
	shareBase  string

	// Events is optional; when nil no activity events are published.
	Events EventPublisher

	// InvalidateShare is optional; when nil revoked links fall back to
	// cache expiry, which only the cacheless configuration may rely on.
	InvalidateShare ShareInvalidator
}

func NewNoteService(notes *repository.NoteRepo, users *repository.UserRepo, sum summarizer.Client, rend export.Renderer, shareBase string) *NoteService {
	return &NoteService{
		notes:      notes,
		users:      users,
		summarizer: sum,
		renderer:   rend,
		shareBase:  strings.TrimRight(shareBase, "/"),
	}
}

// ownedNote is the single authorization guard: it loads a note and verifies
// the requesting owner. Missing notes and foreign notes both surface as
// apperr.ErrNotFound.
func (s *NoteService) ownedNote(ctx context.Context, owner, id uint64) (*model.Note, error) {
	n, err := s.notes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNoteNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if n.UserID != owner {
		return nil, apperr.ErrNotFound
	}
	return n, nil
}

// Create validates and persists a new note. New notes start unpinned,
// unshared and without a summary.
func (s *NoteService) Create(ctx context.Context, owner uint64, title, content string, tags []string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperr.ErrValidation)
	}
	n := &model.Note{
		UserID:  owner,
		Title:   title,
		Content: content,
		Tags:    normalizeTags(tags),
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}
	s.emit(ctx, queue.ActionCreated, n)
	return n, nil
}

// List returns the owner's notes, optionally filtered by a case-insensitive
// substring search (title, content, any tag) and an exact tag match, ordered
// pinned-first then newest-created-first.
func (s *NoteService) List(ctx context.Context, owner uint64, search, tag string) ([]*model.Note, error) {
	return s.notes.ListByOwner(ctx, owner, strings.TrimSpace(search), strings.TrimSpace(tag))
}

// Get returns one owned note.
func (s *NoteService) Get(ctx context.Context, owner, id uint64) (*model.Note, error) {
	return s.ownedNote(ctx, owner, id)
}

// NoteUpdate is the explicit partial-update structure. Empty Title/Content
// keep the existing values; a non-nil Tags replaces the tag set wholesale,
// including with an empty set.
type NoteUpdate struct {
	Title   string
	Content string
	Tags    *[]string
}

// Update applies a partial update to an owned note.
func (s *NoteService) Update(ctx context.Context, owner, id uint64, upd NoteUpdate) (*model.Note, error) {
	n, err := s.ownedNote(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(upd.Title); t != "" {
		n.Title = t
	}
	if c := strings.TrimSpace(upd.Content); c != "" {
		n.Content = c
	}
	if upd.Tags != nil {
		n.Tags = normalizeTags(*upd.Tags)
	}
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete hard-removes an owned note.
func (s *NoteService) Delete(ctx context.Context, owner, id uint64) error {
	n, err := s.ownedNote(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, n.ID); err != nil {
		return err
	}
	s.emit(ctx, queue.ActionDeleted, n)
	return nil
}

// TogglePin flips the pinned flag and returns the new value.
func (s *NoteService) TogglePin(ctx context.Context, owner, id uint64) (bool, error) {
	n, err := s.ownedNote(ctx, owner, id)
	if err != nil {
		return false, err
	}
	n.IsPinned = !n.IsPinned
	if err := s.notes.Save(ctx, n); err != nil {
		return false, err
	}
	if n.IsPinned {
		s.emit(ctx, queue.ActionPinned, n)
	} else {
		s.emit(ctx, queue.ActionUnpinned, n)
	}
	return n.IsPinned, nil
}

// Stats aggregates the owner's dashboard numbers.
func (s *NoteService) Stats(ctx context.Context, owner uint64) (*model.Stats, error) {
	return s.notes.Stats(ctx, owner)
}

// Summarize fills a note's summary once. When a summary already exists it is
// returned unchanged without calling the external model; otherwise the
// adapter is invoked with a bounded timeout and the result persisted. On
// failure the summary stays unset.
func (s *NoteService) Summarize(ctx context.Context, owner, id uint64) (string, error) {
	n, err := s.ownedNote(ctx, owner, id)
	if err != nil {
		return "", err
	}
	if n.Summary != nil {
		return *n.Summary, nil
	}

	text := n.Title + "\n\n" + n.Content
	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	n.Summary = &summary
	if err := s.notes.Save(ctx, n); err != nil {
		return "", err
	}
	s.emit(ctx, queue.ActionSummarized, n)
	return summary, nil
}

// ToggleShare flips a note's public visibility. Turning sharing on assigns a
// fresh random token; turning it off clears the token, so a revoked link
// never works again.
func (s *NoteService) ToggleShare(ctx context.Context, owner, id uint64) (*model.Note, error) {
	n, err := s.ownedNote(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	var revoked string
	if n.IsShared {
		if n.ShareToken != nil {
			revoked = *n.ShareToken
		}
		n.IsShared = false
		n.ShareToken = nil
	} else {
		token := utils.NewShareToken()
		n.IsShared = true
		n.ShareToken = &token
	}
	if err := s.notes.Save(ctx, n); err != nil {
		return nil, err
	}
	if revoked != "" && s.InvalidateShare != nil {
		if err := s.InvalidateShare(ctx, revoked); err != nil {
			log.Printf("note-service: invalidate cached share %s failed: %v", revoked, err)
		}
	}
	if n.IsShared {
		s.emit(ctx, queue.ActionShared, n)
	} else {
		s.emit(ctx, queue.ActionUnshared, n)
	}
	return n, nil
}

// ShareURL builds the client-facing link for a share token.
func (s *NoteService) ShareURL(token string) string {
	return s.shareBase + "/share/" + token
}

// SharedNote is the sanitized public projection of a shared note. It carries
// the owner's display name but never the owner id, email or share state.
type SharedNote struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	Tags      []string  `json:"tags"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetShared resolves a public share token without authentication. Unknown
// tokens and revoked shares both return apperr.ErrNotFound.
func (s *NoteService) GetShared(ctx context.Context, token string) (*SharedNote, error) {
	n, err := s.notes.GetByShareToken(ctx, token)
	if errors.Is(err, repository.ErrNoteNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		return nil, err
	}
	return &SharedNote{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Summary:   n.Summary,
		Tags:      n.Tags,
		Author:    owner.Name,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}, nil
}

// ExportNote renders one owned note to PDF and returns the bytes plus a
// sanitized download filename. The renderer session is scoped to this call.
func (s *NoteService) ExportNote(ctx context.Context, owner, id uint64) ([]byte, string, error) {
	n, err := s.ownedNote(ctx, owner, id)
	if err != nil {
		return nil, "", err
	}
	html, err := export.NoteDocument(n, time.Now().UTC())
	if err != nil {
		return nil, "", fmt.Errorf("%w: build document: %v", apperr.ErrExport, err)
	}
	data, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, "", err
	}
	if err := export.ValidatePDF(data); err != nil {
		return nil, "", err
	}
	s.emit(ctx, queue.ActionExported, n)
	return data, export.NoteFilename(n.Title), nil
}

// ExportAll renders the owner's whole notebook, pinned-first/newest-first,
// into a single PDF. Exporting an empty notebook is a NotFound, matching the
// single-note path.
func (s *NoteService) ExportAll(ctx context.Context, owner uint64) ([]byte, string, error) {
	notes, err := s.notes.ListByOwner(ctx, owner, "", "")
	if err != nil {
		return nil, "", err
	}
	if len(notes) == 0 {
		return nil, "", fmt.Errorf("%w: no notes to export", apperr.ErrNotFound)
	}
	html, err := export.CollectionDocument(notes, time.Now().UTC())
	if err != nil {
		return nil, "", fmt.Errorf("%w: build document: %v", apperr.ErrExport, err)
	}
	data, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, "", err
	}
	if err := export.ValidatePDF(data); err != nil {
		return nil, "", err
	}
	filename := export.CollectionFilename(time.Now())
	s.publish(ctx, queue.ActionExported, 0, owner, filename)
	return data, filename, nil
}

// emit publishes an activity event for one note when a publisher is
// configured. Failures are logged by the publisher and otherwise ignored.
func (s *NoteService) emit(ctx context.Context, action string, n *model.Note) {
	s.publish(ctx, action, n.ID, n.UserID, n.Title)
}

// publish is the shared event path; noteID is zero for whole-notebook
// actions that do not concern a single note.
func (s *NoteService) publish(ctx context.Context, action string, noteID, userID uint64, title string) {
	if s.Events == nil {
		return
	}
	ev := queue.NoteEvent{
		Action:     action,
		NoteID:     noteID,
		UserID:     userID,
		Title:      title,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Events(ctx, ev); err != nil {
		log.Printf("note-service: publish %s event for note %d failed: %v", action, noteID, err)
	}
}

// normalizeTags trims entries, drops empties and removes duplicates while
// preserving first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
