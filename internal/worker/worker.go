// Package worker runs the import pipeline: download, reconcile, tag, store.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
	"soundsift/internal/downloader"
	"soundsift/internal/logger"
	"soundsift/internal/reconcile"
	"soundsift/internal/storage"
	"soundsift/internal/store"
	"soundsift/internal/tagging"
)

type Worker struct {
	DB            *store.DB
	Downloader    *downloader.Downloader
	Reconciler    *reconcile.Reconciler
	Storage       *storage.Store
	MaxConcurrent int
	PollInterval  time.Duration
	Logger        *logger.Logger
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewWorker(db *store.DB, dl *downloader.Downloader, rec *reconcile.Reconciler, st *storage.Store, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		DB:            db,
		Downloader:    dl,
		Reconciler:    rec,
		Storage:       st,
		MaxConcurrent: constants.DefaultConcurrency,
		PollInterval:  constants.DefaultPollInterval,
		Logger:        log.WithComponent("worker"),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (w *Worker) Start() {
	w.Logger.Info("Starting worker")

	if err := w.DB.ResetStuckJobs(); err != nil {
		w.Logger.Error("Failed to reset stuck jobs", "error", err)
	}

	w.wg.Add(1)
	go w.processJobs()
}

func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) processJobs() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.MaxConcurrent)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			queued, err := w.DB.ListQueuedJobs()
			if err != nil {
				w.Logger.Error("Failed to list queued jobs", "error", err)
				continue
			}
			if len(queued) == 0 {
				continue
			}

			running, err := w.DB.CountRunningJobs()
			if err != nil {
				w.Logger.Error("Failed to count running jobs", "error", err)
				continue
			}

			toStart := w.MaxConcurrent - running
			for i := 0; i < toStart && i < len(queued); i++ {
				job := queued[i]
				if err := w.DB.UpdateJobStatus(job.ID, domain.JobStatusRunning, 0); err != nil {
					w.Logger.Error("Failed to claim job", "job_id", job.ID, "error", err)
					continue
				}
				sem <- struct{}{}
				w.wg.Add(1)
				go func(j *domain.ImportJob) {
					defer w.wg.Done()
					defer func() { <-sem }()
					w.runJob(w.ctx, j)
				}(job)
			}
		}
	}
}

func (w *Worker) runJob(ctx context.Context, job *domain.ImportJob) {
	log := w.Logger.WithImport(job.ID, job.SourceURL)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in import job", "panic", r)
			w.failJob(job.ID, fmt.Sprintf("panic: %v", r))
		}
	}()

	log.Info("Running import job")

	// 1. Download the audio and the raw label.
	dl, err := w.Downloader.Fetch(ctx, job.SourceURL)
	if err != nil {
		log.Error("Download failed", "error", err)
		w.failJob(job.ID, fmt.Sprintf("download failed: %v", err))
		return
	}
	defer os.Remove(dl.AudioPath) //nolint:errcheck // best-effort temp cleanup
	w.updateProgress(job.ID, 0.4)

	// 2. Reconcile the label against the metadata providers.
	guess, meta := w.Reconciler.Reconcile(ctx, dl.RawTitle)
	w.updateProgress(job.ID, 0.6)

	track := &domain.Track{
		SourceURL: job.SourceURL,
		RawLabel:  dl.RawTitle,
		Status:    domain.TrackStatusImporting,
	}
	track.ApplyReconciled(guess, meta)
	if track.DurationSeconds == 0 {
		track.DurationSeconds = dl.DurationSeconds
	}

	// 3. Cover art, when the accepted candidate supplied one.
	var coverData []byte
	if meta != nil && meta.CoverURL != "" {
		coverData, err = tagging.DownloadImage(meta.CoverURL)
		if err != nil {
			log.Warn("Cover art download failed", "error", err)
			coverData = nil
		}
	}

	// 4. Tag the audio file in place before it enters the store.
	if err := tagging.TagFile(dl.AudioPath, track, coverData); err != nil {
		log.Warn("Tagging failed, importing untagged audio", "error", err)
	}
	w.updateProgress(job.ID, 0.8)

	// 5. Move the blobs into the media store, keeping the downloaded
	// container's extension (mp3, or flac for lossless sources).
	base := storage.Sanitize(fmt.Sprintf("%s - %s", track.Artist, track.Title))
	audioRel, err := w.Storage.PutFile(filepath.Join("audio", base+filepath.Ext(dl.AudioPath)), dl.AudioPath)
	if err != nil {
		log.Error("Failed to store audio", "error", err)
		w.failJob(job.ID, fmt.Sprintf("failed to store audio: %v", err))
		return
	}
	track.AudioPath = audioRel

	if len(coverData) > 0 {
		coverRel, err := w.Storage.Put(filepath.Join("covers", base+constants.ExtJPG), bytes.NewReader(coverData))
		if err != nil {
			log.Warn("Failed to store cover art", "error", err)
		} else {
			track.CoverPath = coverRel
		}
	}

	// 6. Persist the track and close out the job.
	track.Status = domain.TrackStatusCompleted
	if err := w.DB.CreateTrack(track); err != nil {
		log.Error("Failed to persist track", "error", err)
		w.failJob(job.ID, fmt.Sprintf("failed to persist track: %v", err))
		return
	}

	if err := w.DB.CompleteJob(job.ID, track.ID); err != nil {
		log.Error("Failed to complete job", "error", err)
		return
	}

	log.Info("Import completed",
		"track_id", track.ID,
		"title", track.Title,
		"artist", track.Artist,
		"enriched", track.Enriched,
		"hybrid", track.Hybrid,
	)
}

func (w *Worker) updateProgress(jobID string, progress float64) {
	if err := w.DB.UpdateJobStatus(jobID, domain.JobStatusRunning, progress); err != nil {
		w.Logger.Error("Failed to update job progress", "job_id", jobID, "error", err)
	}
}

func (w *Worker) failJob(jobID, msg string) {
	if err := w.DB.FailJob(jobID, msg); err != nil {
		w.Logger.Error("Failed to mark job failed", "job_id", jobID, "error", err)
	}
}
