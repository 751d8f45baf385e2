package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quill/internal/note"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "notes.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return store
}

func TestInitIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "  My Note  ", "body")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}
	if created.Title != "My Note" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatal("expected created and updated timestamps to match on create")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertSameNote(t, created, got)
}

func assertSameNote(t *testing.T, want, got note.Note) {
	t.Helper()
	if got.ID != want.ID || got.Title != want.Title || got.Content != want.Content {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("timestamp mismatch: expected %+v, got %+v", want, got)
	}
}

func TestCreateDefaultsTitle(t *testing.T) {
	store := newTestStore(t)
	created, err := store.Create(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != note.DefaultTitle {
		t.Fatalf("expected default title, got %q", created.Title)
	}
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, note.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "title", "old body")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	updated, err := store.Update(ctx, created.ID, "new title", "new body")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "new title" || updated.Content != "new body" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("expected created_at untouched")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %v then %v", created.UpdatedAt, updated.UpdatedAt)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	assertSameNote(t, updated, got)
}

func TestUpdateNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Update(context.Background(), "missing", "t", "c"); !errors.Is(err, note.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "t", "c")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, created.ID); !errors.Is(err, note.ErrNotFound) {
		t.Fatalf("expected note gone, got %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, note.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "first", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.Create(ctx, "second", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Update(ctx, first.ID, "first touched", ""); err != nil {
		t.Fatalf("Update: %v", err)
	}

	notes, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID != first.ID || notes[1].ID != second.ID {
		t.Fatalf("expected touched note first, got [%s %s]", notes[0].Title, notes[1].Title)
	}
}

func TestListEmpty(t *testing.T) {
	store := newTestStore(t)
	notes, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if notes == nil || len(notes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", notes)
	}
}
