package config

import (
	"os"
	"testing"

	"soundsift/internal/constants"
)

func TestLoad(t *testing.T) {
	// Test default values
	cfg := Load()

	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected Port to be %s, got %s", constants.DefaultPort, cfg.Port)
	}

	if cfg.DBPath != constants.DefaultDBPath {
		t.Errorf("Expected DBPath to be %s, got %s", constants.DefaultDBPath, cfg.DBPath)
	}

	if cfg.MusicBrainzURL != constants.DefaultMusicBrainzURL {
		t.Errorf("Expected MusicBrainzURL to be %s, got %s", constants.DefaultMusicBrainzURL, cfg.MusicBrainzURL)
	}

	// Check MediaDir is not empty (depends on user's home dir)
	if cfg.MediaDir == "" {
		t.Error("Expected MediaDir to not be empty")
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("DB_PATH", "/tmp/test.db")
	os.Setenv("MEDIA_DIR", "/tmp/media")
	os.Setenv("SIGNING_SECRET", "hunter2")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DB_PATH")
		os.Unsetenv("MEDIA_DIR")
		os.Unsetenv("SIGNING_SECRET")
	}()

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be 9090, got %s", cfg.Port)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DBPath to be /tmp/test.db, got %s", cfg.DBPath)
	}

	if cfg.MediaDir != "/tmp/media" {
		t.Errorf("Expected MediaDir to be /tmp/media, got %s", cfg.MediaDir)
	}

	if cfg.SigningSecret != "hunter2" {
		t.Errorf("Expected SigningSecret to be hunter2, got %s", cfg.SigningSecret)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:           "8080",
		DBPath:         "test.db",
		MediaDir:       "/tmp/media",
		SigningSecret:  "secret",
		MusicBrainzURL: "https://musicbrainz.org/ws/2",
		LogLevel:       "info",
		LogFormat:      "text",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port - not a number",
			mutate:  func(c *Config) { c.Port = "abc" },
			wantErr: true,
		},
		{
			name:    "invalid port - out of range",
			mutate:  func(c *Config) { c.Port = "99999" },
			wantErr: true,
		},
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: true,
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: true,
		},
		{
			name:    "empty media dir",
			mutate:  func(c *Config) { c.MediaDir = "" },
			wantErr: true,
		},
		{
			name:    "empty signing secret",
			mutate:  func(c *Config) { c.SigningSecret = "" },
			wantErr: true,
		},
		{
			name:    "spotify id without secret",
			mutate:  func(c *Config) { c.SpotifyClientID = "id-only" },
			wantErr: true,
		},
		{
			name: "spotify credentials as a pair",
			mutate: func(c *Config) {
				c.SpotifyClientID = "id"
				c.SpotifyClientSecret = "secret"
			},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderToggles(t *testing.T) {
	cfg := Config{}
	if cfg.HasSpotify() {
		t.Error("Expected HasSpotify to be false without credentials")
	}
	if cfg.HasLastFM() {
		t.Error("Expected HasLastFM to be false without an API key")
	}

	cfg.SpotifyClientID = "id"
	if cfg.HasSpotify() {
		t.Error("Expected HasSpotify to be false with only a client ID")
	}

	cfg.SpotifyClientSecret = "secret"
	if !cfg.HasSpotify() {
		t.Error("Expected HasSpotify to be true with both credentials")
	}

	cfg.LastFMAPIKey = "key"
	if !cfg.HasLastFM() {
		t.Error("Expected HasLastFM to be true with an API key")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	value := getEnv("TEST_VAR", "default")
	if value != "test_value" {
		t.Errorf("Expected 'test_value', got '%s'", value)
	}

	value = getEnv("MISSING_TEST_VAR", "default")
	if value != "default" {
		t.Errorf("Expected 'default', got '%s'", value)
	}
}
