package web

import (
	"log/slog"
	"net/http"
	"time"

	"quill/internal/config"
	"quill/internal/docstore"
	"quill/internal/gateway"
)

type Server struct {
	cfg   config.Config
	store *docstore.Store
	gen   *gateway.Client
	mux   *http.ServeMux
	auth  *Auth
}

func NewServer(cfg config.Config, store *docstore.Store, gen *gateway.Client) (*Server, error) {
	auth, err := newAuth(cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:   cfg,
		store: store,
		gen:   gen,
		mux:   http.NewServeMux(),
		auth:  auth,
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if s.auth != nil {
		h = s.auth.Middleware(h)
	}
	return logMiddleware(s.corsMiddleware(h))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/notes", s.handleNotes)
	s.mux.HandleFunc("/api/notes/", s.handleNote)
	s.mux.HandleFunc("/api/improve", s.handleImprove)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logMiddleware records every request at debug level, headers included.
// Outermost in the chain so auth rejections and preflights show up too.
func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slog.Default().Enabled(r.Context(), slog.LevelDebug) {
			next.ServeHTTP(w, r)
			return
		}
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"headers", redactHeaders(r.Header),
		)
	})
}

// redactHeaders masks credentials before they reach any log sink.
func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Authorization") != "" {
		out.Set("Authorization", "[redacted]")
	}
	return out
}

// corsMiddleware answers cross-origin preflight and stamps the configured
// origin on every response. OPTIONS never reaches auth or the handlers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.cfg.CORSOrigin
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
