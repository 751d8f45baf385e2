// Package assist is the client side of the text improvement gateway. It
// enforces single-flight: while one Improve call is outstanding, further
// calls return ErrBusy immediately instead of queuing.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

var (
	// ErrBusy means a prior improvement call is still in flight.
	ErrBusy = errors.New("an improvement is already in progress")
	// ErrEmptyText rejects blank input before any network call is made.
	ErrEmptyText = errors.New("nothing to improve")
)

// Error carries the gateway's HTTP status plus a message fit for display.
type Error struct {
	Status  int
	Message string
	Details string
}

func (e *Error) Error() string { return e.Message }

type Service struct {
	url        string
	httpClient *http.Client
	username   string
	password   string
	busy       atomic.Bool
}

func NewService(baseURL string) *Service {
	return &Service{
		url:        strings.TrimRight(baseURL, "/") + "/api/improve",
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (s *Service) SetBasicAuth(user, pass string) {
	s.username = user
	s.password = pass
}

// Available reports whether a new call would be accepted right now. The
// flag is advisory; Improve re-checks atomically.
func (s *Service) Available() bool {
	return !s.busy.Load()
}

type improveRequest struct {
	Text        string  `json:"text"`
	MaxLength   int     `json:"max_length,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type improveResponse struct {
	GeneratedText string `json:"generated_text"`
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Details       string `json:"details"`
}

func (s *Service) Improve(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	payload, err := json.Marshal(improveRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &Error{Message: "could not reach the improvement service", Details: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded improveResponse
	if err := json.Unmarshal(body, &decoded); err != nil && resp.StatusCode == http.StatusOK {
		return "", &Error{Status: resp.StatusCode, Message: "improvement service returned an unreadable response", Details: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Status:  resp.StatusCode,
			Message: messageForStatus(resp.StatusCode),
			Details: decoded.Details,
		}
	}
	improved := strings.TrimSpace(decoded.GeneratedText)
	if !decoded.Success || improved == "" {
		return "", &Error{Status: resp.StatusCode, Message: "the model returned an empty response"}
	}
	return improved, nil
}

// messageForStatus maps the gateway's wire statuses onto user-facing
// messages, one per failure class.
func messageForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "nothing to improve"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "the improvement service rejected our credentials"
	case http.StatusTooManyRequests:
		return "too many requests right now, try again in a moment"
	case http.StatusServiceUnavailable:
		return "the model is still loading, try again shortly"
	default:
		return "text improvement failed"
	}
}
