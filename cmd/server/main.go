package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"soundsift/internal/config"
	"soundsift/internal/downloader"
	httpapp "soundsift/internal/http"
	"soundsift/internal/logger"
	"soundsift/internal/providers"
	"soundsift/internal/reconcile"
	"soundsift/internal/storage"
	"soundsift/internal/store"
	"soundsift/internal/worker"
)

func main() {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close() //nolint:errcheck // process exit cleanup

	// Providers in priority order. Spotify and Last.fm join only when
	// configured; MusicBrainz needs no credentials and is always last.
	var provs []providers.Provider
	if cfg.HasSpotify() {
		provs = append(provs, providers.NewSpotifyProvider(cfg.SpotifyClientID, cfg.SpotifyClientSecret))
	} else {
		appLogger.Warn("Spotify credentials not configured, provider disabled")
	}
	if cfg.HasLastFM() {
		provs = append(provs, providers.NewLastFMProvider(cfg.LastFMAPIKey))
	} else {
		appLogger.Warn("Last.fm API key not configured, provider disabled")
	}
	provs = append(provs, providers.NewMusicBrainzProvider(cfg.MusicBrainzURL))

	reconciler := reconcile.New(provs, appLogger)
	mediaStore := storage.New(cfg.MediaDir, cfg.SigningSecret)
	dl := downloader.New(filepath.Join(cfg.MediaDir, "tmp"))

	w := worker.NewWorker(db, dl, reconciler, mediaStore, appLogger)
	w.Start()
	defer w.Stop()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(db, mediaStore, appLogger)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting")
}
