package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"docqa/internal/index"
	"docqa/internal/service"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "docqa"

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
}

// Snapshotter exposes the index snapshot currently being served.
type Snapshotter interface {
	Current() *index.Index
}

// Options tunes the HTTP boundary.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP API server for docqa.
type Server struct {
	router  chi.Router
	asker   Asker
	indexes Snapshotter
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewServer creates and configures the HTTP server. A non-positive
// RateLimitRPS disables rate limiting on /api/chat.
func NewServer(asker Asker, indexes Snapshotter, log *slog.Logger, opts Options) *Server {
	s := &Server{
		asker:   asker,
		indexes: indexes,
		log:     log,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/sources", s.handleSources)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimit(s.limiter))
		}
		r.Post("/api/chat", s.handleChat)
	})

	s.router = r
}
