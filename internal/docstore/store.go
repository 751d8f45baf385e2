package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"quill/internal/note"
)

// Store persists notes in a sqlite database. Timestamps are stored as unix
// milliseconds; updated_at is never allowed to move backwards.
type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

type OpenOptions struct {
	BusyTimeout time.Duration
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	dsn := path
	if opts.BusyTimeout > 0 {
		dsn = fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, opts.BusyTimeout.Milliseconds())
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SetLockTimeout bounds how long busy retries keep going. Zero disables
// retrying entirely.
func (s *Store) SetLockTimeout(d time.Duration) {
	s.lockTimeout = d
}

func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}
	version, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return err
	}
	switch {
	case version == 0:
		return s.setSchemaVersion(ctx, schemaVersion)
	case version != schemaVersion:
		return fmt.Errorf("unsupported schema version %d (want %d)", version, schemaVersion)
	}
	return nil
}

func (s *Store) currentSchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.queryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, v int) error {
	if _, err := s.execContext(ctx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := s.execContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", v)
	return err
}

// Create inserts a new note with a server-assigned id and timestamps.
func (s *Store) Create(ctx context.Context, title, content string) (note.Note, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	n := note.Note{
		ID:        uuid.NewString(),
		Title:     note.NormalizeTitle(title),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.execContext(ctx, `
		INSERT INTO notes(id, title, content, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, n.CreatedAt.UnixMilli(), n.UpdatedAt.UnixMilli())
	if err != nil {
		return note.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

// Get returns a note by id, or note.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (note.Note, error) {
	var n note.Note
	var createdAt, updatedAt int64
	err := s.queryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at FROM notes WHERE id=?
	`, id).Scan(&n.ID, &n.Title, &n.Content, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return note.Note{}, note.ErrNotFound
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("query note: %w", err)
	}
	n.CreatedAt = time.UnixMilli(createdAt).UTC()
	n.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return n, nil
}

// Update persists title and content and refreshes updated_at. The refreshed
// timestamp is clamped so it never precedes the stored one.
func (s *Store) Update(ctx context.Context, id, title, content string) (note.Note, error) {
	tx, start, err := s.beginTx(ctx, "update-note")
	if err != nil {
		return note.Note{}, err
	}
	defer s.rollbackTx(tx, "update-note", start)

	var createdAt, prevUpdated int64
	err = tx.QueryRowContext(ctx, "SELECT created_at, updated_at FROM notes WHERE id=?", id).Scan(&createdAt, &prevUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return note.Note{}, note.ErrNotFound
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("query note: %w", err)
	}

	updated := time.Now().UTC().Truncate(time.Millisecond)
	if updated.UnixMilli() < prevUpdated {
		updated = time.UnixMilli(prevUpdated).UTC()
	}
	n := note.Note{
		ID:        id,
		Title:     note.NormalizeTitle(title),
		Content:   content,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
		UpdatedAt: updated,
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE notes SET title=?, content=?, updated_at=? WHERE id=?
	`, n.Title, n.Content, n.UpdatedAt.UnixMilli(), id)
	if err != nil {
		return note.Note{}, fmt.Errorf("update note: %w", err)
	}
	if err := s.commitTx(tx, "update-note", start); err != nil {
		return note.Note{}, err
	}
	return n, nil
}

// Delete removes a note. Deleting an unknown id reports note.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.execContext(ctx, "DELETE FROM notes WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return note.ErrNotFound
	}
	return nil
}

// List returns every note ordered by updated_at descending. Creation time
// breaks ties so freshly created notes stay ahead of older ones.
func (s *Store) List(ctx context.Context) ([]note.Note, error) {
	rows, err := s.queryContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		ORDER BY updated_at DESC, created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]note.Note, 0)
	for rows.Next() {
		var n note.Note
		var createdAt, updatedAt int64
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = time.UnixMilli(createdAt).UTC()
		n.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
