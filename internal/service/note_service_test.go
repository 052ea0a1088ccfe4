package service

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnotes/api/internal/apperr"
	"github.com/smartnotes/api/internal/queue"
	"github.com/smartnotes/api/internal/repository"
)

var testSchema = []string{
	`CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE notes (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL,
		title       TEXT NOT NULL,
		content     TEXT NOT NULL,
		summary     TEXT,
		is_pinned   INTEGER NOT NULL DEFAULT 0,
		is_shared   INTEGER NOT NULL DEFAULT 0,
		share_token TEXT UNIQUE,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE note_tags (
		note_id INTEGER NOT NULL,
		tag     TEXT NOT NULL,
		PRIMARY KEY (note_id, tag)
	)`,
}

// stubSummarizer counts upstream calls so tests can assert the at-most-once
// behavior of Summarize.
type stubSummarizer struct {
	out   string
	err   error
	calls int
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

// stubRenderer returns canned bytes instead of driving a browser.
type stubRenderer struct {
	out   []byte
	err   error
	calls int
}

func (r *stubRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.out, nil
}

type fixture struct {
	svc  *NoteService
	sum  *stubSummarizer
	rend *stubRenderer
	db   *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() { db.Close() })

	sum := &stubSummarizer{out: "a concise summary"}
	rend := &stubRenderer{out: []byte("%PDF-1.4 fake")}
	svc := NewNoteService(repository.NewNoteRepo(db), repository.NewUserRepo(db), sum, rend, "http://localhost:3000/")
	return &fixture{svc: svc, sum: sum, rend: rend, db: db}
}

func (f *fixture) user(t *testing.T, email string) uint64 {
	t.Helper()
	id, err := repository.NewUserRepo(f.db).Create(context.Background(), "Test User", email, "secret123", 4)
	require.NoError(t, err)
	return id
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, owner, "   ", "body", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(ctx, owner, "title", "\t\n", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateNormalizesTags(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")

	n, err := f.svc.Create(context.Background(), owner, "t", "c", []string{" go ", "go", "", "db"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "db"}, n.Tags)
}

func TestOwnershipGuard(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, alice, "private", "body", nil)
	require.NoError(t, err)

	// Another user's note reads as missing rather than forbidden.
	_, err = f.svc.Get(ctx, bob, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = f.svc.Delete(ctx, bob, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.TogglePin(ctx, bob, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.svc.Summarize(ctx, bob, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, _, err = f.svc.ExportNote(ctx, bob, n.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// The owner still sees it.
	got, err := f.svc.Get(ctx, alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, owner, "original title", "original content", []string{"keep"})
	require.NoError(t, err)

	// Empty strings leave fields untouched.
	got, err := f.svc.Update(ctx, owner, n.ID, NoteUpdate{Content: "new content"})
	require.NoError(t, err)
	assert.Equal(t, "original title", got.Title)
	assert.Equal(t, "new content", got.Content)
	assert.Equal(t, []string{"keep"}, got.Tags)

	// A present tag list replaces the set wholesale, even when empty.
	empty := []string{}
	got, err = f.svc.Update(ctx, owner, n.ID, NoteUpdate{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestSummarizeOnce(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, owner, "title", "content", nil)
	require.NoError(t, err)

	first, err := f.svc.Summarize(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "a concise summary", first)
	assert.Equal(t, 1, f.sum.calls)

	// A second call returns the stored summary without hitting the model.
	second, err := f.svc.Summarize(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.sum.calls)
}

func TestSummarizeFailureLeavesNoteUnchanged(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, owner, "title", "content", nil)
	require.NoError(t, err)

	f.sum.err = apperr.ErrServiceUnavailable
	_, err = f.svc.Summarize(ctx, owner, n.ID)
	assert.ErrorIs(t, err, apperr.ErrServiceUnavailable)

	got, err := f.svc.Get(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Summary)
}

func TestToggleShareCycle(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, owner, "shareable", "content", nil)
	require.NoError(t, err)

	shared, err := f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.True(t, shared.IsShared)
	require.NotNil(t, shared.ShareToken)
	firstToken := *shared.ShareToken

	pub, err := f.svc.GetShared(ctx, firstToken)
	require.NoError(t, err)
	assert.Equal(t, "shareable", pub.Title)
	assert.Equal(t, "Test User", pub.Author)

	// Revoking clears the token and kills the old link.
	unshared, err := f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.False(t, unshared.IsShared)
	assert.Nil(t, unshared.ShareToken)
	_, err = f.svc.GetShared(ctx, firstToken)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Re-sharing mints a fresh token.
	reshared, err := f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
	require.NotNil(t, reshared.ShareToken)
	assert.NotEqual(t, firstToken, *reshared.ShareToken)
}

func TestToggleShareInvalidatesRevokedToken(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	var dropped []string
	f.svc.InvalidateShare = func(ctx context.Context, token string) error {
		dropped = append(dropped, token)
		return nil
	}

	n, err := f.svc.Create(ctx, owner, "shareable", "content", nil)
	require.NoError(t, err)

	// Turning sharing on invalidates nothing.
	shared, err := f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
	require.NotNil(t, shared.ShareToken)
	token := *shared.ShareToken
	assert.Empty(t, dropped)

	// Turning it off drops exactly the revoked token.
	_, err = f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{token}, dropped)

	// Invalidation failures are logged, never surfaced.
	f.svc.InvalidateShare = func(ctx context.Context, token string) error {
		return assert.AnError
	}
	_, err = f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
	_, err = f.svc.ToggleShare(ctx, owner, n.ID)
	require.NoError(t, err)
}

func TestShareURL(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "http://localhost:3000/share/abc", f.svc.ShareURL("abc"))
}

func TestExportNote(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, owner, "My Note: draft #1", "content", nil)
	require.NoError(t, err)

	data, filename, err := f.svc.ExportNote(ctx, owner, n.ID)
	require.NoError(t, err)
	assert.Equal(t, f.rend.out, data)
	assert.Equal(t, "My_Note_draft_1.pdf", filename)
}

func TestExportRejectsBadRender(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	n, err := f.svc.Create(ctx, owner, "title", "content", nil)
	require.NoError(t, err)

	f.rend.out = []byte("<html>not a pdf</html>")
	_, _, err = f.svc.ExportNote(ctx, owner, n.ID)
	assert.ErrorIs(t, err, apperr.ErrExport)

	f.rend.out = nil
	_, _, err = f.svc.ExportNote(ctx, owner, n.ID)
	assert.ErrorIs(t, err, apperr.ErrExport)
}

func TestExportAllEmpty(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")

	_, _, err := f.svc.ExportAll(context.Background(), owner)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExportAll(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, owner, "one", "content", nil)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, owner, "two", "content", nil)
	require.NoError(t, err)

	var events []queue.NoteEvent
	f.svc.Events = func(ctx context.Context, ev queue.NoteEvent) error {
		events = append(events, ev)
		return nil
	}

	data, filename, err := f.svc.ExportAll(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, f.rend.out, data)
	assert.Regexp(t, `^Smart_Notes_\d{4}-\d{2}-\d{2}\.pdf$`, filename)

	// Bulk exports publish one event covering the whole notebook.
	require.Len(t, events, 1)
	assert.Equal(t, queue.ActionExported, events[0].Action)
	assert.Zero(t, events[0].NoteID)
	assert.Equal(t, owner, events[0].UserID)
	assert.Equal(t, filename, events[0].Title)
}

func TestEventsAreBestEffort(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ctx := context.Background()

	var events []queue.NoteEvent
	f.svc.Events = func(ctx context.Context, ev queue.NoteEvent) error {
		events = append(events, ev)
		return assert.AnError
	}

	// Publish failures never surface to the caller.
	n, err := f.svc.Create(ctx, owner, "title", "content", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, queue.ActionCreated, events[0].Action)
	assert.Equal(t, n.ID, events[0].NoteID)
}
