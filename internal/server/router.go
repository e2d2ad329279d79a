package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hivehr/hivehr/internal/api"
	"github.com/hivehr/hivehr/internal/api/handlers"
	"github.com/hivehr/hivehr/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator       middleware.AuthValidator
	PolicyHandler       *handlers.PolicyHandler
	SearchHandler       *handlers.SearchHandler
	ChatHandler         *handlers.ChatHandler
	ConversationHandler *handlers.ConversationHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Route("/policies", func(r chi.Router) {
			r.Post("/", cfg.PolicyHandler.Create)
			r.Get("/", cfg.PolicyHandler.List)
			r.Post("/reindex", cfg.PolicyHandler.Reindex)
			r.Get("/{id}", cfg.PolicyHandler.Get)
			r.Put("/{id}", cfg.PolicyHandler.Update)
			r.Delete("/{id}", cfg.PolicyHandler.Delete)
			r.Post("/{id}/ingest", cfg.PolicyHandler.Ingest)
		})

		r.Post("/search", cfg.SearchHandler.Search)

		r.Post("/chat", cfg.ChatHandler.Chat)
		r.Post("/chat/stream", cfg.ChatHandler.ChatStream)

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", cfg.ConversationHandler.Start)
			r.Get("/", cfg.ConversationHandler.List)
			r.Get("/{id}", cfg.ConversationHandler.Get)
			r.Post("/{id}/close", cfg.ConversationHandler.Close)
		})
	})

	return r
}
