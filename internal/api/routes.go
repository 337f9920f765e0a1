package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrwolf/kocicka/internal/config"
	"github.com/mrwolf/kocicka/internal/llm"
)

func NewRouter(cfg *config.Server, gen llm.Generator) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware)

	handlers := NewHandlers(cfg, gen)

	// Public endpoints
	r.Get("/", handlers.Root)
	r.With(JSONContentType).Get("/health", handlers.Health)

	// Generation endpoints
	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimit, time.Minute, nil)))
		}
		r.Use(JSONContentType)
		r.Use(AuthMiddleware(cfg))

		r.Post("/cat/respond", handlers.CatRespond)
		r.Post("/story/generate", handlers.StoryGenerate)
	})

	return r
}
