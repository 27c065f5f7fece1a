package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/api"
	apiMiddleware "github.com/aboodesafaagg-byte/riwaya-api/internal/api/middleware"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.verifier, app.jwtService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	translationHandler := api.NewJobHandler(
		domain.JobKindTranslation, app.jobService, app.settingsService, app.logger)
	titleHandler := api.NewJobHandler(
		domain.JobKindTitleGeneration, app.jobService, app.settingsService, app.logger)
	glossaryHandler := api.NewGlossaryHandler(app.glossaryService, app.logger)
	novelHandler := api.NewNovelHandler(app.novelStore, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/jobs/translation", translationHandler.RegisterRoutes)
			r.Route("/jobs/titles", titleHandler.RegisterRoutes)

			r.Get("/novels", novelHandler.List)
			r.Route("/novels/{id}", func(r chi.Router) {
				r.Get("/", novelHandler.Get)
				glossaryHandler.RegisterRoutes(r)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
