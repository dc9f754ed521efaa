// Package httpapp exposes the import and library API over chi.
package httpapp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soundsift/internal/logger"
	"soundsift/internal/storage"
	"soundsift/internal/store"
)

type Handler struct {
	DB      *store.DB
	Storage *storage.Store
	Logger  *logger.Logger
}

func NewHandler(db *store.DB, st *storage.Store, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		DB:      db,
		Storage: st,
		Logger:  log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/imports", h.CreateImport)
		r.Get("/imports", h.ListImports)
		r.Get("/imports/{id}", h.GetImport)

		r.Get("/tracks", h.ListTracks)
		r.Get("/tracks/{id}", h.GetTrack)
		r.Patch("/tracks/{id}", h.UpdateTrack)
	})

	r.Get("/media/*", h.ServeMedia)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}
