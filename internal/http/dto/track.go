package dto

import (
	"time"

	"soundsift/internal/domain"
)

type TrackUpdateRequest struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
	Album  *string `json:"album"`
}

func (r *TrackUpdateRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNonBlank("title", r.Title)...)
	errs = append(errs, validateNonBlank("artist", r.Artist)...)
	errs = append(errs, validateNonBlank("album", r.Album)...)
	return errs
}

// Empty reports whether the request carries no fields at all.
func (r *TrackUpdateRequest) Empty() bool {
	return r.Title == nil && r.Artist == nil && r.Album == nil
}

type TrackResponse struct {
	ID              int      `json:"id"`
	SourceURL       string   `json:"source_url"`
	RawLabel        string   `json:"raw_label"`
	Title           string   `json:"title"`
	Artist          string   `json:"artist"`
	Album           string   `json:"album"`
	ReleaseDate     string   `json:"release_date,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	ExternalIDs     []string `json:"external_ids,omitempty"`
	Popularity      int      `json:"popularity,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	Provider        string   `json:"provider,omitempty"`
	MatchScore      float64  `json:"match_score,omitempty"`
	Hybrid          bool     `json:"hybrid"`
	Enriched        bool     `json:"enriched"`
	AudioURL        string   `json:"audio_url,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// NewTrackResponse converts a stored track to its API shape. The audio and
// cover URLs are pre-signed by the caller; raw store paths never leave the
// server.
func NewTrackResponse(t *domain.Track, audioURL, coverURL string) TrackResponse {
	return TrackResponse{
		ID:              t.ID,
		SourceURL:       t.SourceURL,
		RawLabel:        t.RawLabel,
		Title:           t.Title,
		Artist:          t.Artist,
		Album:           t.Album,
		ReleaseDate:     t.ReleaseDate,
		Genres:          t.Genres,
		ExternalIDs:     t.ExternalIDs,
		Popularity:      t.Popularity,
		DurationSeconds: t.DurationSeconds,
		Provider:        t.Provider,
		MatchScore:      t.MatchScore,
		Hybrid:          t.Hybrid,
		Enriched:        t.Enriched,
		AudioURL:        audioURL,
		CoverURL:        coverURL,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
}

type TrackListResponse struct {
	Tracks     []TrackResponse `json:"tracks"`
	Pagination Pagination      `json:"pagination"`
}
