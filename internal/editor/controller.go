// Package editor owns the in-memory note list and the current selection,
// mediating between input events, the remote store and the assist service.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"quill/internal/assist"
	"quill/internal/note"
)

// Store is the slice of the remote store client the controller needs.
type Store interface {
	List(ctx context.Context) ([]note.Note, error)
	Create(ctx context.Context, title, content string) (note.Note, error)
	Update(ctx context.Context, id, title, content string) (note.Note, error)
	Delete(ctx context.Context, id string) error
}

// Improver is the assist service surface.
type Improver interface {
	Improve(ctx context.Context, text string) (string, error)
	Available() bool
}

type Options struct {
	// AutoSaveDelay is the quiet period before a scheduled edit persists.
	AutoSaveDelay time.Duration
	// DoubleEnterWindow is the maximum gap between two Enter presses that
	// counts as a double press. DoubleEnterMinGap rejects key repeat.
	DoubleEnterWindow time.Duration
	DoubleEnterMinGap time.Duration
	// OnStatus receives UI feedback; defaults to logging.
	OnStatus StatusFunc
}

type Controller struct {
	mu       sync.Mutex
	store    Store
	improver Improver

	notes      []note.Note
	selectedID string

	autoSave  *Debouncer
	lastEnter time.Time

	window   time.Duration
	minGap   time.Duration
	onStatus StatusFunc
}

func NewController(store Store, improver Improver, opts Options) *Controller {
	if opts.AutoSaveDelay <= 0 {
		opts.AutoSaveDelay = time.Second
	}
	if opts.DoubleEnterWindow <= 0 {
		opts.DoubleEnterWindow = 600 * time.Millisecond
	}
	if opts.DoubleEnterMinGap <= 0 {
		opts.DoubleEnterMinGap = 50 * time.Millisecond
	}
	if opts.OnStatus == nil {
		opts.OnStatus = logStatus
	}
	return &Controller{
		store:    store,
		improver: improver,
		autoSave: NewDebouncer(opts.AutoSaveDelay),
		window:   opts.DoubleEnterWindow,
		minGap:   opts.DoubleEnterMinGap,
		onStatus: opts.OnStatus,
	}
}

// LoadNotes fetches the full list once at startup. On failure the list
// stays empty and the error is surfaced as a status.
func (c *Controller) LoadNotes(ctx context.Context) error {
	notes, err := c.store.List(ctx)
	if err != nil {
		c.onStatus(Status{Message: "could not load notes", Kind: StatusError, Sticky: true})
		return err
	}
	c.mu.Lock()
	c.notes = notes
	c.mu.Unlock()
	return nil
}

// Notes returns a copy of the in-memory list, updated_at descending.
func (c *Controller) Notes() []note.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]note.Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// Selected returns the currently selected note, if any.
func (c *Controller) Selected() (note.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == "" {
		return note.Note{}, false
	}
	if i := c.indexOf(c.selectedID); i >= 0 {
		return c.notes[i], true
	}
	return note.Note{}, false
}

// CreateNote persists a new note with defaults, inserts it at the head of
// the list and selects it. The list is already updated_at descending, so
// head insertion keeps the invariant. In-memory state is untouched on
// failure.
func (c *Controller) CreateNote(ctx context.Context) (note.Note, error) {
	n, err := c.store.Create(ctx, "", "")
	if err != nil {
		c.onStatus(Status{Message: "could not create note", Kind: StatusError, Sticky: true})
		return note.Note{}, err
	}
	c.mu.Lock()
	c.notes = append([]note.Note{n}, c.notes...)
	c.selectedID = n.ID
	c.mu.Unlock()
	c.onStatus(Status{Message: "note created", Kind: StatusSuccess})
	return n, nil
}

// SelectNote sets the current selection. An unknown id is ignored; this is
// a defensive guard, not an error path.
func (c *Controller) SelectNote(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) < 0 {
		slog.Debug("select ignored, unknown note", "id", id)
		return
	}
	c.selectedID = id
}

// SaveNote persists an edit and refreshes the in-memory copy. Auto-save and
// manual save differ only in status feedback. On failure the local edit
// stays visible even though it is unpersisted; nothing is rolled back.
func (c *Controller) SaveNote(ctx context.Context, id, title, content string, autoSave bool) error {
	// Apply the edit locally first so it survives a failed persist.
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.notes[i].Title = note.NormalizeTitle(title)
		c.notes[i].Content = content
	}
	c.mu.Unlock()

	updated, err := c.store.Update(ctx, id, title, content)
	if err != nil {
		c.onStatus(Status{Message: "could not save note", Kind: StatusError, Sticky: true})
		return err
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.notes[i] = updated
		note.SortByUpdatedDesc(c.notes)
	}
	c.mu.Unlock()

	if autoSave {
		c.onStatus(Status{Message: "saved", Kind: StatusInfo})
	} else {
		c.onStatus(Status{Message: "note saved", Kind: StatusSuccess, Sticky: true})
	}
	return nil
}

// ScheduleAutoSave restarts the debounce timer with the latest edit. Only
// the most recent edit inside the quiet window is persisted.
func (c *Controller) ScheduleAutoSave(id, title, content string) {
	c.autoSave.Schedule(func() {
		if err := c.SaveNote(context.Background(), id, title, content, true); err != nil {
			slog.Warn("auto-save failed", "id", id, "err", err)
		}
	})
}

// CancelAutoSave drops any pending debounced save.
func (c *Controller) CancelAutoSave() {
	c.autoSave.Cancel()
}

// DeleteNote removes the note from the store, then from memory. User
// confirmation is the caller's responsibility. If the selected note is
// deleted, selection clears. Failure leaves store and memory unchanged.
func (c *Controller) DeleteNote(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		c.onStatus(Status{Message: "could not delete note", Kind: StatusError, Sticky: true})
		return err
	}
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.notes = append(c.notes[:i], c.notes[i+1:]...)
	}
	if c.selectedID == id {
		c.selectedID = ""
	}
	c.mu.Unlock()
	c.onStatus(Status{Message: "note deleted", Kind: StatusInfo})
	return nil
}

// HandleEnter records an Enter press while editing content and reports
// whether it completes a double press. Only a recognized double press
// should suppress the newline. Presses faster than the minimum gap are
// treated as key repeat and ignored.
func (c *Controller) HandleEnter(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.lastEnter.IsZero() {
		gap := now.Sub(c.lastEnter)
		if gap >= c.minGap && gap <= c.window {
			c.lastEnter = time.Time{}
			return true
		}
	}
	c.lastEnter = now
	return false
}

// Improve runs the assist flow on the given text. The assist service
// enforces single-flight and input validation; the controller just turns
// failures into statuses.
func (c *Controller) Improve(ctx context.Context, text string) (string, error) {
	improved, err := c.improver.Improve(ctx, text)
	if err != nil {
		var ae *assist.Error
		switch {
		case errors.Is(err, assist.ErrBusy):
			c.onStatus(Status{Message: "improvement already running", Kind: StatusInfo})
		case errors.Is(err, assist.ErrEmptyText):
			c.onStatus(Status{Message: "nothing to improve", Kind: StatusInfo})
		case errors.As(err, &ae):
			c.onStatus(Status{Message: ae.Message, Kind: StatusError, Sticky: true})
		default:
			c.onStatus(Status{Message: "text improvement failed", Kind: StatusError, Sticky: true})
		}
		return "", err
	}
	c.onStatus(Status{Message: "text improved", Kind: StatusSuccess})
	return improved, nil
}

// indexOf is called with c.mu held.
func (c *Controller) indexOf(id string) int {
	for i := range c.notes {
		if c.notes[i].ID == id {
			return i
		}
	}
	return -1
}
