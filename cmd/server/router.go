package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/filetrack/internal/api"
	apiMiddleware "github.com/phrazzld/filetrack/internal/api/middleware"
)

// setupRouter creates the router with middleware and every route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	uploadHandler := api.NewUploadHandler(app.uploadService, app.config.Upload.MaxBodyBytes, app.logger)
	statusHandler := api.NewStatusHandler(app.statusService, app.logger)

	r.Post("/upload", uploadHandler.Upload)
	r.Get("/status/{"+api.TaskIDParam+"}", statusHandler.GetStatus)
	r.Get("/health", api.Health)

	return r
}
