package store

import (
	"database/sql"
	"errors"
	"time"

	"soundsift/internal/domain"
)

func (db *DB) CreateJob(job *domain.ImportJob) error {
	query := `INSERT INTO import_jobs (id, source_url, status, progress, created_at, updated_at)
		VALUES (:id, :source_url, :status, :progress, :created_at, :updated_at)`

	_, err := db.NamedExec(query, job)
	return err
}

func (db *DB) GetJob(id string) (*domain.ImportJob, error) {
	query := `SELECT id, source_url, status, progress, track_id, created_at, updated_at, error FROM import_jobs WHERE id = ?`

	job := &domain.ImportJob{}
	if err := db.Get(job, query, id); err != nil {
		return nil, err
	}
	return job, nil
}

func (db *DB) UpdateJobStatus(id string, status domain.JobStatus, progress float64) error {
	query := `UPDATE import_jobs SET status = ?, progress = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, status, progress, time.Now(), id)
	return err
}

func (db *DB) CompleteJob(id string, trackID int) error {
	query := `UPDATE import_jobs SET status = ?, progress = 1, track_id = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, domain.JobStatusCompleted, trackID, time.Now(), id)
	return err
}

func (db *DB) FailJob(id string, errorMsg string) error {
	query := `UPDATE import_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`
	_, err := db.Exec(query, domain.JobStatusFailed, errorMsg, time.Now(), id)
	return err
}

func (db *DB) ListJobs(limit int) ([]*domain.ImportJob, error) {
	query := `SELECT id, source_url, status, progress, track_id, created_at, updated_at, error FROM import_jobs ORDER BY created_at DESC LIMIT ?`

	var jobs []*domain.ImportJob
	err := db.Select(&jobs, query, limit)
	return jobs, err
}

func (db *DB) ListQueuedJobs() ([]*domain.ImportJob, error) {
	query := `SELECT id, source_url, status, progress, track_id, created_at, updated_at, error FROM import_jobs WHERE status = 'queued' ORDER BY created_at ASC`

	var jobs []*domain.ImportJob
	err := db.Select(&jobs, query)
	return jobs, err
}

func (db *DB) CountRunningJobs() (int, error) {
	var count int
	err := db.Get(&count, `SELECT COUNT(*) FROM import_jobs WHERE status = 'running'`)
	return count, err
}

// GetActiveJobBySourceURL returns the queued or running job for a URL, or
// nil when none exists.
func (db *DB) GetActiveJobBySourceURL(sourceURL string) (*domain.ImportJob, error) {
	query := `SELECT id, source_url, status, progress, track_id, created_at, updated_at, error
		FROM import_jobs
		WHERE source_url = ? AND status IN ('queued', 'running')
		LIMIT 1`

	job := &domain.ImportJob{}
	err := db.Get(job, query, sourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ResetStuckJobs requeues jobs left in the running state by an unclean
// shutdown.
func (db *DB) ResetStuckJobs() error {
	query := `UPDATE import_jobs SET status = 'queued', progress = 0, updated_at = ? WHERE status = 'running'`
	_, err := db.Exec(query, time.Now())
	return err
}
