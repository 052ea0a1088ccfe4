package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/smartnotes/api/internal/model"
)

// NoteRepo manages persistence for notes and their tag rows.
type NoteRepo struct{ db *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{db: db} }

const noteColumns = "id,user_id,title,content,summary,is_pinned,is_shared,share_token,created_at,updated_at"

// Create inserts the note and its tags in one transaction and assigns the
// generated ID and timestamps back to the struct.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	now := time.Now().UTC().Truncate(time.Second)
	n.CreatedAt, n.UpdatedAt = now, now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO notes (user_id,title,content,summary,is_pinned,is_shared,share_token,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		n.UserID, n.Title, n.Content, nullStr(n.Summary), n.IsPinned, n.IsShared, nullStr(n.ShareToken), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)

	if err := insertTags(ctx, tx, n.ID, n.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// Save persists every mutable field of an existing note and replaces its tag
// set wholesale. The owner column is never touched.
func (r *NoteRepo) Save(ctx context.Context, n *model.Note) error {
	n.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE notes SET title=?, content=?, summary=?, is_pinned=?, is_shared=?, share_token=?, updated_at=? WHERE id=?",
		n.Title, n.Content, nullStr(n.Summary), n.IsPinned, n.IsShared, nullStr(n.ShareToken), n.UpdatedAt, n.ID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// The row may legitimately be unchanged; confirm it exists.
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM notes WHERE id=?", n.ID).Scan(&one); err == sql.ErrNoRows {
			return ErrNoteNotFound
		} else if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id=?", n.ID); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, n.ID, n.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a note with its tags. Ownership is checked by the
// service layer, not here.
func (r *NoteRepo) GetByID(ctx context.Context, id uint64) (*model.Note, error) {
	return r.getWhere(ctx, "id=?", id)
}

// GetByShareToken retrieves a note by its public share token. Notes whose
// sharing was toggled off are not returned even if a stale token is supplied.
func (r *NoteRepo) GetByShareToken(ctx context.Context, token string) (*model.Note, error) {
	return r.getWhere(ctx, "share_token=? AND is_shared=1", token)
}

func (r *NoteRepo) getWhere(ctx context.Context, cond string, arg any) (*model.Note, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE "+cond, arg)
	n, err := scanNote(row)
	if err != nil {
		return nil, err
	}
	tags, err := r.tagsFor(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	n.Tags = tags
	return n, nil
}

// ListByOwner returns all notes owned by ownerID, optionally narrowed by a
// case-insensitive substring search over title, content and tags, and by an
// exact tag match. Both filters apply together when both are given. Order is
// pinned-first, then newest-created-first.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID uint64, search, tag string) ([]*model.Note, error) {
	q := "SELECT " + noteColumns + " FROM notes WHERE user_id=?"
	args := []any{ownerID}

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q += ` AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ?
			OR id IN (SELECT note_id FROM note_tags WHERE LOWER(tag) LIKE ?))`
		args = append(args, pattern, pattern, pattern)
	}
	if tag != "" {
		q += " AND id IN (SELECT note_id FROM note_tags WHERE tag=?)"
		args = append(args, tag)
	}
	// id breaks ties between notes created within the same second.
	q += " ORDER BY is_pinned DESC, created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Delete hard-removes a note and (via FK cascade or the explicit statement
// below) its tag rows.
func (r *NoteRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tags WHERE note_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id=?", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoteNotFound
	}
	return tx.Commit()
}

// Stats aggregates an owner's dashboard numbers: note counts and the ten
// most frequent tags, count-descending with alphabetical tie-break so the
// ranking is deterministic.
func (r *NoteRepo) Stats(ctx context.Context, ownerID uint64) (*model.Stats, error) {
	s := &model.Stats{MostUsedTags: []model.TagCount{}}
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(summary), COALESCE(SUM(is_pinned),0) FROM notes WHERE user_id=?",
		ownerID).Scan(&s.TotalNotes, &s.TotalSummarized, &s.PinnedNotes)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT t.tag, COUNT(*) AS cnt FROM note_tags t
		 JOIN notes n ON n.id = t.note_id
		 WHERE n.user_id = ?
		 GROUP BY t.tag
		 ORDER BY cnt DESC, t.tag ASC
		 LIMIT 10`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		s.MostUsedTags = append(s.MostUsedTags, tc)
	}
	return s, rows.Err()
}

// tagsFor loads the tag set of a single note.
func (r *NoteRepo) tagsFor(ctx context.Context, noteID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT tag FROM note_tags WHERE note_id=? ORDER BY tag", noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// attachTags loads the tag sets for a batch of notes with one query.
func (r *NoteRepo) attachTags(ctx context.Context, notes []*model.Note) error {
	if len(notes) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Note, len(notes))
	placeholders := make([]string, 0, len(notes))
	args := make([]any, 0, len(notes))
	for _, n := range notes {
		n.Tags = []string{}
		byID[n.ID] = n
		placeholders = append(placeholders, "?")
		args = append(args, n.ID)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT note_id, tag FROM note_tags WHERE note_id IN ("+strings.Join(placeholders, ",")+") ORDER BY tag",
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return err
		}
		if n := byID[id]; n != nil {
			n.Tags = append(n.Tags, tag)
		}
	}
	return rows.Err()
}

func insertTags(ctx context.Context, tx *sql.Tx, noteID uint64, tags []string) error {
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, "INSERT INTO note_tags (note_id, tag) VALUES (?,?)", noteID, t); err != nil {
			return err
		}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface{ Scan(dest ...any) error }

func scanNote(row scanner) (*model.Note, error) {
	var n model.Note
	var summary, shareToken sql.NullString
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &summary,
		&n.IsPinned, &n.IsShared, &shareToken, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if summary.Valid {
		n.Summary = &summary.String
	}
	if shareToken.Valid {
		n.ShareToken = &shareToken.String
	}
	n.Tags = []string{}
	return &n, nil
}

// nullStr converts an optional string into a driver-friendly argument.
func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
