package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Upstream failure taxonomy. Each maps to a distinct user-facing message;
// none are retried here.
var (
	ErrEmptyResult  = errors.New("model returned no usable text")
	ErrUpstreamAuth = errors.New("upstream authentication failed")
	ErrRateLimited  = errors.New("upstream rate limit exceeded")
	ErrModelLoading = errors.New("model is warming up")
)

const improveInstruction = "Improve the following paragraph. Fix grammar, spelling and clarity while keeping the original meaning and tone. Reply with only the improved text, no preamble."

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to a Gemini-style generateContent endpoint. It is stateless;
// single-flight gating lives with the caller.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Improve wraps text in the fixed instruction prompt, calls the upstream
// model once and returns the cleaned result. Empty output after cleanup is
// ErrEmptyResult, not a retry.
func (c *Client) Improve(ctx context.Context, text string, maxLength int, temperature float64) (string, error) {
	prompt := improveInstruction + "\n\n" + text
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxLength,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upstream response: %w", err)
	}
	slog.Debug("upstream generate", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d", ErrUpstreamAuth, resp.StatusCode)
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(body)))
	case http.StatusServiceUnavailable:
		return "", fmt.Errorf("%w: %s", ErrModelLoading, strings.TrimSpace(string(body)))
	default:
		return "", fmt.Errorf("upstream request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("parse upstream response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("upstream error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}

	raw := ""
	if len(genResp.Candidates) > 0 {
		var parts []string
		for _, p := range genResp.Candidates[0].Content.Parts {
			parts = append(parts, p.Text)
		}
		raw = strings.Join(parts, "")
	}

	cleaned := CleanResponse(text, raw)
	if cleaned == "" {
		return "", ErrEmptyResult
	}
	return cleaned, nil
}
