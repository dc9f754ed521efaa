package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"soundsift/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port                string
	DBPath              string
	MediaDir            string
	SigningSecret       string
	SpotifyClientID     string
	SpotifyClientSecret string
	LastFMAPIKey        string
	MusicBrainzURL      string
	LogLevel            string
	LogFormat           string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	home, _ := os.UserHomeDir()
	defaultMedia := filepath.Join(home, "Music/soundsift")

	return &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		DBPath:              getEnv("DB_PATH", constants.DefaultDBPath),
		MediaDir:            getEnv("MEDIA_DIR", defaultMedia),
		SigningSecret:       getEnv("SIGNING_SECRET", ""),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		LastFMAPIKey:        getEnv("LASTFM_API_KEY", ""),
		MusicBrainzURL:      getEnv("MUSICBRAINZ_URL", constants.DefaultMusicBrainzURL),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors.
// Provider credentials are deliberately not required: a missing credential
// disables that provider instead of failing startup.
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.MediaDir == "" {
		errors = append(errors, "MEDIA_DIR cannot be empty")
	}

	if c.SigningSecret == "" {
		errors = append(errors, "SIGNING_SECRET cannot be empty")
	}

	if c.MusicBrainzURL == "" {
		errors = append(errors, "MUSICBRAINZ_URL cannot be empty")
	} else {
		if _, err := url.Parse(c.MusicBrainzURL); err != nil {
			errors = append(errors, fmt.Sprintf("MUSICBRAINZ_URL is not a valid URL: %s", c.MusicBrainzURL))
		}
	}

	if (c.SpotifyClientID == "") != (c.SpotifyClientSecret == "") {
		errors = append(errors, "SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set together")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// HasSpotify reports whether Spotify credentials are configured.
func (c *Config) HasSpotify() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// HasLastFM reports whether a Last.fm API key is configured.
func (c *Config) HasLastFM() bool {
	return c.LastFMAPIKey != ""
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
