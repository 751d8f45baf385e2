package note

import (
	"sort"
	"strings"
	"time"
)

// DefaultTitle is used whenever a note is created or saved without one.
const DefaultTitle = "Untitled Note"

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeTitle trims the raw title and falls back to DefaultTitle when
// nothing is left.
func NormalizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// SortByUpdatedDesc orders notes newest-first by UpdatedAt. Creation time
// breaks ties so the order stays stable across equal timestamps.
func SortByUpdatedDesc(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}
