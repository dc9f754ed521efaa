package store

import (
	"fmt"
	"time"

	"soundsift/internal/domain"
)

func (db *DB) CreateTrack(track *domain.Track) error {
	now := time.Now()
	track.CreatedAt = now
	track.UpdatedAt = now

	query := `INSERT INTO tracks (
		source_url, raw_label, title, artist, album,
		release_date, genres, external_ids, popularity, duration_seconds,
		provider, provider_id, match_score, hybrid, enriched,
		audio_path, cover_path, status, error, created_at, updated_at
	) VALUES (
		:source_url, :raw_label, :title, :artist, :album,
		:release_date, :genres, :external_ids, :popularity, :duration_seconds,
		:provider, :provider_id, :match_score, :hybrid, :enriched,
		:audio_path, :cover_path, :status, :error, :created_at, :updated_at
	) RETURNING id`

	rows, err := db.NamedQuery(query, track)
	if err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	defer rows.Close() //nolint:errcheck // deferred cleanup

	if rows.Next() {
		if err := rows.Scan(&track.ID); err != nil {
			return fmt.Errorf("failed to scan track id: %w", err)
		}
	} else if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating returning rows: %w", err)
	}

	return nil
}

func (db *DB) GetTrackByID(id int) (*domain.Track, error) {
	query := `SELECT * FROM tracks WHERE id = ?`

	var track domain.Track
	if err := db.Get(&track, query, id); err != nil {
		return nil, err
	}
	return &track, nil
}

func (db *DB) UpdateTrack(track *domain.Track) error {
	track.UpdatedAt = time.Now()

	query := `UPDATE tracks SET
		source_url = :source_url, raw_label = :raw_label,
		title = :title, artist = :artist, album = :album,
		release_date = :release_date, genres = :genres, external_ids = :external_ids,
		popularity = :popularity, duration_seconds = :duration_seconds,
		provider = :provider, provider_id = :provider_id, match_score = :match_score,
		hybrid = :hybrid, enriched = :enriched,
		audio_path = :audio_path, cover_path = :cover_path,
		status = :status, error = :error, updated_at = :updated_at
	WHERE id = :id`

	result, err := db.NamedExec(query, track)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track %d not found", track.ID)
	}
	return nil
}

// UpdateTrackMetadata overwrites only the user-editable metadata columns.
// This is the external edit flow; it never touches provenance or file
// columns.
func (db *DB) UpdateTrackMetadata(id int, title, artist, album string) error {
	query := `UPDATE tracks SET title = ?, artist = ?, album = ?, updated_at = ? WHERE id = ?`

	result, err := db.Exec(query, title, artist, album, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update track metadata: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track %d not found", id)
	}
	return nil
}

func (db *DB) ListTracks(limit, offset int) ([]*domain.Track, error) {
	query := `SELECT * FROM tracks ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	var tracks []*domain.Track
	err := db.Select(&tracks, query, limit, offset)
	return tracks, err
}

func (db *DB) CountTracks() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM tracks`)
	return count, err
}
