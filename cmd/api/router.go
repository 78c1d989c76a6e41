package main

import (
	"context"
	"net/http"
	"time"

	"bookscanner/internal/analytics"
	"bookscanner/internal/app"
	"bookscanner/internal/catalog"
	"bookscanner/internal/export"
	"bookscanner/internal/httpx"
	"bookscanner/internal/scan"
)

// newRouter registers every /v1 route. The returned handler is not yet
// wrapped in the global middleware chain.
func newRouter(a *app.App) *http.ServeMux {
	scanHandler := scan.NewHTTPHandler(a.Scanner, a.Config.Upload.MaxBytes)
	bookHandler := catalog.NewHTTPHandler(catalog.NewService(a.Repo))
	analyticsHandler := analytics.NewHTTPHandler(analytics.NewService(a.Repo))
	exportHandler := export.NewHTTPHandler(a.Repo, a.Logger)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]interface{}{
			"status":     "ok",
			"ocr_engine": a.Scanner.EngineName(),
			"db_driver":  a.Config.Database.Driver,
			"enrichment": a.Scanner.EnrichEnabled(),
		}, nil)
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := a.Repo.Ping(ctx); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "database not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]string{"status": "ready"}, nil)
	})

	uploadLimit := httpx.RequestSizeLimitMiddleware(a.Config.Upload.MaxBytes)
	router.Handle("POST /v1/scans", uploadLimit(http.HandlerFunc(scanHandler.Upload)))

	router.HandleFunc("GET /v1/books", bookHandler.List)
	router.HandleFunc("GET /v1/books/{id}", bookHandler.Get)
	router.HandleFunc("DELETE /v1/books/{id}", bookHandler.Delete)

	router.HandleFunc("GET /v1/analytics", analyticsHandler.Get)
	router.HandleFunc("GET /v1/export/{format}", exportHandler.Download)

	return router
}
