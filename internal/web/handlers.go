package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quill/internal/markdown"
	"quill/internal/note"
)

type notePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		notes, err := s.store.List(r.Context())
		if err != nil {
			slog.Error("list notes", "err", err)
			writeError(w, http.StatusInternalServerError, "list notes failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, notes)
	case http.MethodPost:
		var req notePayload
		if !decodeJSON(w, r, &req) {
			return
		}
		n, err := s.store.Create(r.Context(), req.Title, req.Content)
		if err != nil {
			slog.Error("create note", "err", err)
			writeError(w, http.StatusInternalServerError, "create note failed", err.Error())
			return
		}
		slog.Info("note created", "id", n.ID)
		writeJSON(w, http.StatusCreated, n)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	pathPart := strings.TrimPrefix(r.URL.Path, "/api/notes/")
	pathPart = strings.TrimSuffix(pathPart, "/")
	if pathPart == "" {
		http.NotFound(w, r)
		return
	}
	if id, ok := strings.CutSuffix(pathPart, "/preview"); ok {
		s.handlePreview(w, r, id)
		return
	}
	if strings.Contains(pathPart, "/") {
		http.NotFound(w, r)
		return
	}

	id := pathPart
	switch r.Method {
	case http.MethodGet:
		n, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, "get note failed", err)
			return
		}
		writeJSON(w, http.StatusOK, n)
	case http.MethodPut:
		var req notePayload
		if !decodeJSON(w, r, &req) {
			return
		}
		n, err := s.store.Update(r.Context(), id, req.Title, req.Content)
		if err != nil {
			s.writeStoreError(w, "update note failed", err)
			return
		}
		slog.Debug("note updated", "id", n.ID, "updated_at", n.UpdatedAt)
		writeJSON(w, http.StatusOK, n)
	case http.MethodDelete:
		if err := s.store.Delete(r.Context(), id); err != nil {
			s.writeStoreError(w, "delete note failed", err)
			return
		}
		slog.Info("note deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

// handlePreview renders note content to sanitized HTML. A posted body
// overrides the stored content so unsaved edits can be previewed.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}
	var req struct {
		Content *string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	content := ""
	if req.Content != nil {
		content = *req.Content
	} else {
		n, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.writeStoreError(w, "get note failed", err)
			return
		}
		content = n.Content
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": markdown.ToHTML(content)})
}

func (s *Server) writeStoreError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, note.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found", "")
		return
	}
	slog.Error(msg, "err", err)
	writeError(w, http.StatusInternalServerError, msg, err.Error())
}
