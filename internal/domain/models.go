package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"soundsift/internal/constants"
)

// StringSlice backs the genres and external-id columns: both live in a
// single TEXT column as a JSON array, so tracks need no join tables and sqlx
// can bind them directly. An empty or nil slice is stored as "[]"; NULL,
// "null" and empty columns all scan back to nil so old rows and fresh rows
// read the same.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSlice) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", src)
	}

	if raw == "" || raw == "null" {
		*s = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), s)
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ImportJob represents one import of a video URL into the library.
type ImportJob struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Error     *string   `json:"error,omitempty" db:"error"`
	ID        string    `json:"id" db:"id"`
	SourceURL string    `json:"source_url" db:"source_url"`
	Status    JobStatus `json:"status" db:"status"`
	TrackID   *int      `json:"track_id,omitempty" db:"track_id"`
	Progress  float64   `json:"progress" db:"progress"`
}

// BasicGuess is the structured title/artist/album inferred from a raw video
// title. Artist and album fall back to the "Unknown" sentinels when the
// label gives no hint.
type BasicGuess struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Title  string `json:"title"`
}

// HasArtist reports whether the guess carries a real artist rather than the
// sentinel.
func (g BasicGuess) HasArtist() bool {
	return g.Artist != "" && g.Artist != constants.UnknownArtist
}

// HasAlbum reports whether the guess carries a real album rather than the
// sentinel.
func (g BasicGuess) HasAlbum() bool {
	return g.Album != "" && g.Album != constants.UnknownAlbum
}

// CandidateRecord is one normalized search result from a metadata provider.
// Provider-specific response shapes never leave their adapter; everything
// downstream sees this form.
type CandidateRecord struct {
	Provider        string      `json:"provider"`
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	ArtistName      string      `json:"artist_name"`
	AlbumName       string      `json:"album_name"`
	ReleaseDate     string      `json:"release_date,omitempty"`
	CoverURL        string      `json:"cover_url,omitempty"`
	Genres          StringSlice `json:"genres,omitempty"`
	ExternalIDs     StringSlice `json:"external_ids,omitempty"`
	Popularity      int         `json:"popularity,omitempty"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
}

// ScoredCandidate pairs a candidate with its similarity score against the
// original guess.
type ScoredCandidate struct {
	Candidate CandidateRecord `json:"candidate"`
	Score     float64         `json:"score"`
}

// ReconciledMetadata is the record handed to persistence. Title, artist and
// album are always populated. When the accepted candidate disagrees with the
// guess on title or artist, Hybrid is set: the guess keeps naming the track
// and only the supplementary fields are imported from the candidate.
type ReconciledMetadata struct {
	Title           string      `json:"title"`
	Artist          string      `json:"artist"`
	Album           string      `json:"album"`
	ReleaseDate     string      `json:"release_date,omitempty"`
	CoverURL        string      `json:"cover_url,omitempty"`
	Provider        string      `json:"provider,omitempty"`
	ProviderID      string      `json:"provider_id,omitempty"`
	Genres          StringSlice `json:"genres,omitempty"`
	ExternalIDs     StringSlice `json:"external_ids,omitempty"`
	Popularity      int         `json:"popularity,omitempty"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
	Score           float64     `json:"score,omitempty"`
	Hybrid          bool        `json:"hybrid,omitempty"`
}

// TrackStatus represents the import status of a track
type TrackStatus string

const (
	TrackStatusPending   TrackStatus = "pending"
	TrackStatusImporting TrackStatus = "importing"
	TrackStatusCompleted TrackStatus = "completed"
	TrackStatusFailed    TrackStatus = "failed"
)

// Track is the persisted library record for one imported recording.
type Track struct { //nolint:govet // field ordering prioritizes readability over memory alignment
	ID              int         `json:"id" db:"id"`
	SourceURL       string      `json:"source_url" db:"source_url"`
	RawLabel        string      `json:"raw_label" db:"raw_label"`
	Title           string      `json:"title" db:"title"`
	Artist          string      `json:"artist" db:"artist"`
	Album           string      `json:"album" db:"album"`
	ReleaseDate     string      `json:"release_date,omitempty" db:"release_date"`
	Genres          StringSlice `json:"genres,omitempty" db:"genres"`
	ExternalIDs     StringSlice `json:"external_ids,omitempty" db:"external_ids"`
	Popularity      int         `json:"popularity,omitempty" db:"popularity"`
	DurationSeconds int         `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Provider        string      `json:"provider,omitempty" db:"provider"`
	ProviderID      string      `json:"provider_id,omitempty" db:"provider_id"`
	MatchScore      float64     `json:"match_score,omitempty" db:"match_score"`
	Hybrid          bool        `json:"hybrid" db:"hybrid"`
	Enriched        bool        `json:"enriched" db:"enriched"`
	AudioPath       string      `json:"audio_path" db:"audio_path"`
	CoverPath       string      `json:"cover_path,omitempty" db:"cover_path"`
	Status          TrackStatus `json:"status" db:"status"`
	Error           string      `json:"error,omitempty" db:"error"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// ApplyReconciled fills the track's metadata columns from a reconciliation
// result, or from the bare guess when reconciliation produced nothing.
func (t *Track) ApplyReconciled(guess BasicGuess, meta *ReconciledMetadata) {
	if meta == nil {
		t.Title = guess.Title
		t.Artist = guess.Artist
		t.Album = guess.Album
		return
	}
	t.Title = meta.Title
	t.Artist = meta.Artist
	t.Album = meta.Album
	t.ReleaseDate = meta.ReleaseDate
	t.Genres = meta.Genres
	t.ExternalIDs = meta.ExternalIDs
	t.Popularity = meta.Popularity
	t.DurationSeconds = meta.DurationSeconds
	t.Provider = meta.Provider
	t.ProviderID = meta.ProviderID
	t.MatchScore = meta.Score
	t.Hybrid = meta.Hybrid
	t.Enriched = true
}
