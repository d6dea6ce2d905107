package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/alvinashcraft/dewdrop/internal/api/handlers"
	"github.com/alvinashcraft/dewdrop/internal/service"
	"github.com/alvinashcraft/dewdrop/internal/storage"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(store *storage.Store, svc *service.Service) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/sources", handlers.GetSources(store))
		api.Post("/sources", handlers.CreateSource(store))
		api.Put("/sources/{id}", handlers.ToggleSource(store))

		api.Post("/export", handlers.Export(svc))

		api.Get("/digests", handlers.ListDigests(store))
		api.Get("/digests/latest", handlers.GetLatestDigest(store))

		api.Post("/publish", handlers.Publish(svc))
	})

	return r
}
