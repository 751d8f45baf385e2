// Package store is the HTTP client for the note API. It keeps no cache and
// performs no retries; a failed call surfaces immediately to the caller.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quill/internal/note"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBasicAuth attaches credentials to every request.
func (c *Client) SetBasicAuth(user, pass string) {
	c.username = user
	c.password = pass
}

// List returns all notes in the server's order (updated_at descending).
// The order is trusted, not re-verified.
func (c *Client) List(ctx context.Context) ([]note.Note, error) {
	var notes []note.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, http.StatusOK, &notes); err != nil {
		return nil, fmt.Errorf("%w: %v", note.ErrLoad, err)
	}
	return notes, nil
}

func (c *Client) Create(ctx context.Context, title, content string) (note.Note, error) {
	var n note.Note
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/api/notes", body, http.StatusCreated, &n); err != nil {
		return note.Note{}, fmt.Errorf("%w: %v", note.ErrCreate, err)
	}
	return n, nil
}

func (c *Client) Get(ctx context.Context, id string) (note.Note, error) {
	var n note.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+id, nil, http.StatusOK, &n); err != nil {
		if isNotFound(err) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, fmt.Errorf("%w: %v", note.ErrLoad, err)
	}
	return n, nil
}

func (c *Client) Update(ctx context.Context, id, title, content string) (note.Note, error) {
	var n note.Note
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id, body, http.StatusOK, &n); err != nil {
		if isNotFound(err) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, fmt.Errorf("%w: %v", note.ErrSave, err)
	}
	return n, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/notes/"+id, nil, http.StatusNoContent, nil); err != nil {
		if isNotFound(err) {
			return note.ErrNotFound
		}
		return fmt.Errorf("%w: %v", note.ErrDelete, err)
	}
	return nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
