package note

import "errors"

// Store operation failures. Callers wrap these with %w so the editor can
// classify a failure without inspecting transport details.
var (
	ErrLoad     = errors.New("load notes failed")
	ErrCreate   = errors.New("create note failed")
	ErrSave     = errors.New("save note failed")
	ErrDelete   = errors.New("delete note failed")
	ErrNotFound = errors.New("note not found")
)
