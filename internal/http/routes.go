package httpapp

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
	"soundsift/internal/http/dto"
)

// CreateImport enqueues an import job for a video URL. Submitting a URL that
// already has a queued or running job returns that job instead of a
// duplicate.
func (h *Handler) CreateImport(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		h.respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  dto.ToResponse(errs),
			"fields": dto.ToMap(errs),
		})
		return
	}

	existing, err := h.DB.GetActiveJobBySourceURL(req.URL)
	if err != nil {
		h.Logger.Error("Failed to check for active job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create import")
		return
	}
	if existing != nil {
		h.respondJSON(w, http.StatusOK, dto.NewImportJobResponse(existing))
		return
	}

	job := &domain.ImportJob{
		ID:        uuid.New().String(),
		SourceURL: req.URL,
		Status:    domain.JobStatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.DB.CreateJob(job); err != nil {
		h.Logger.Error("Failed to create import job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create import")
		return
	}

	h.Logger.Info("Import queued", "job_id", job.ID, "source_url", job.SourceURL)
	h.respondJSON(w, http.StatusAccepted, dto.NewImportJobResponse(job))
}

func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)

	jobs, err := h.DB.ListJobs(limit)
	if err != nil {
		h.Logger.Error("Failed to list import jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list imports")
		return
	}

	resp := make([]dto.ImportJobResponse, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, dto.NewImportJobResponse(j))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.DB.GetJob(id)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, "import not found")
		return
	}
	if err != nil {
		h.Logger.Error("Failed to get import job", "job_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get import")
		return
	}

	h.respondJSON(w, http.StatusOK, dto.NewImportJobResponse(job))
}

func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r.URL.Query().Get("page"), 1)
	pageSize := parseIntParam(r.URL.Query().Get("page_size"), 30)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 30
	}

	total, err := h.DB.CountTracks()
	if err != nil {
		h.Logger.Error("Failed to count tracks", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}

	tracks, err := h.DB.ListTracks(pageSize, (page-1)*pageSize)
	if err != nil {
		h.Logger.Error("Failed to list tracks", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}

	resp := dto.TrackListResponse{
		Tracks:     make([]dto.TrackResponse, 0, len(tracks)),
		Pagination: dto.NewPagination(page, pageSize, total),
	}
	for _, t := range tracks {
		resp.Tracks = append(resp.Tracks, h.trackResponse(t))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := h.lookupTrack(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, h.trackResponse(track))
}

// UpdateTrack applies a user metadata edit. Only title, artist and album can
// change; provenance and stored files stay as imported.
func (h *Handler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	track, ok := h.lookupTrack(w, r)
	if !ok {
		return
	}

	var req dto.TrackUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Empty() {
		h.respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  dto.ToResponse(errs),
			"fields": dto.ToMap(errs),
		})
		return
	}

	title, artist, album := track.Title, track.Artist, track.Album
	if req.Title != nil {
		title = *req.Title
	}
	if req.Artist != nil {
		artist = *req.Artist
	}
	if req.Album != nil {
		album = *req.Album
	}

	if err := h.DB.UpdateTrackMetadata(track.ID, title, artist, album); err != nil {
		h.Logger.Error("Failed to update track", "track_id", track.ID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update track")
		return
	}

	updated, err := h.DB.GetTrackByID(track.ID)
	if err != nil {
		h.Logger.Error("Failed to reload track", "track_id", track.ID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update track")
		return
	}
	h.respondJSON(w, http.StatusOK, h.trackResponse(updated))
}

// ServeMedia streams a stored object, gated by the signed-URL check.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	relPath := chi.URLParam(r, "*")
	q := r.URL.Query()

	if !h.Storage.Verify(relPath, q.Get("expires"), q.Get("token")) {
		h.respondError(w, http.StatusForbidden, "invalid or expired signature")
		return
	}

	f, err := h.Storage.Get(relPath)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "object not found")
		return
	}
	defer f.Close() //nolint:errcheck // deferred cleanup

	info, err := f.Stat()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to read object")
		return
	}
	if ct := mediaContentType(relPath); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// mediaContentType maps stored extensions to their MIME type. flac is not in
// the platform mime tables ServeContent falls back on, so the store's known
// formats are typed explicitly.
func mediaContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtFLAC:
		return constants.MimeTypeFLAC
	case constants.ExtMP3:
		return constants.MimeTypeMP3
	case constants.ExtJPG:
		return constants.MimeTypeJPEG
	}
	return ""
}

func (h *Handler) lookupTrack(w http.ResponseWriter, r *http.Request) (*domain.Track, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid track id")
		return nil, false
	}

	track, err := h.DB.GetTrackByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, "track not found")
		return nil, false
	}
	if err != nil {
		h.Logger.Error("Failed to get track", "track_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get track")
		return nil, false
	}
	return track, true
}

func (h *Handler) trackResponse(t *domain.Track) dto.TrackResponse {
	var audioURL, coverURL string
	if t.AudioPath != "" {
		audioURL = h.Storage.Sign(t.AudioPath, constants.DefaultSignTTL)
	}
	if t.CoverPath != "" {
		coverURL = h.Storage.Sign(t.CoverPath, constants.DefaultSignTTL)
	}
	return dto.NewTrackResponse(t, audioURL, coverURL)
}

func parseIntParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
