package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(withLogging)
	router.Use(h.withLocalOrigin)

	// sync state and queue controls
	router.Group(func(r chi.Router) {
		r.Get("/api/sync/status", h.getSyncStatus)
		r.Get("/api/sync/ws", h.streamSyncStatus)
		r.Post("/api/sync/now", h.syncNow)
		r.Put("/api/sync/token", h.setToken)
		r.Get("/api/sync/queue", h.listQueue)
		r.Delete("/api/sync/queue", h.clearQueue)
		r.Delete("/api/sync/queue/{id}", h.discardOperation)
		r.Post("/api/sync/queue/{id}/resubmit", h.resubmitOperation)
	})

	// offline-first writes
	router.Group(func(r chi.Router) {
		r.Post("/api/records/*", h.writeRecord)
		r.Put("/api/records/*", h.writeRecord)
		r.Patch("/api/records/*", h.writeRecord)
		r.Delete("/api/records/*", h.writeRecord)
	})

	router.Get("/api/version", h.getAppVersion)
	router.Get("/api/version/build", h.getBuildInfo)
	router.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
