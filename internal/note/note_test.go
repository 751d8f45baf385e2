package note

import (
	"testing"
	"time"
)

func TestNormalizeTitle(t *testing.T) {
	if got := NormalizeTitle("  My Note  "); got != "My Note" {
		t.Fatalf("expected trimmed title, got %q", got)
	}
	if got := NormalizeTitle("   "); got != DefaultTitle {
		t.Fatalf("expected default title, got %q", got)
	}
	if got := NormalizeTitle(""); got != DefaultTitle {
		t.Fatalf("expected default title, got %q", got)
	}
}

func TestSortByUpdatedDesc(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notes := []Note{
		{ID: "a", UpdatedAt: base.Add(-2 * time.Hour)},
		{ID: "b", UpdatedAt: base},
		{ID: "c", UpdatedAt: base.Add(-1 * time.Hour)},
	}
	SortByUpdatedDesc(notes)
	if notes[0].ID != "b" || notes[1].ID != "c" || notes[2].ID != "a" {
		t.Fatalf("expected order [b c a], got [%s %s %s]", notes[0].ID, notes[1].ID, notes[2].ID)
	}
}

func TestSortByUpdatedDescTieBreaksOnCreated(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notes := []Note{
		{ID: "old", CreatedAt: ts.Add(-time.Hour), UpdatedAt: ts},
		{ID: "new", CreatedAt: ts, UpdatedAt: ts},
	}
	SortByUpdatedDesc(notes)
	if notes[0].ID != "new" {
		t.Fatalf("expected newer creation first on equal update times, got %s", notes[0].ID)
	}
}
