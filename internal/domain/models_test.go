package domain

import (
	"testing"

	"soundsift/internal/constants"
)

func TestJobStatus_Constants(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"queued", JobStatusQueued, "queued"},
		{"running", JobStatusRunning, "running"},
		{"completed", JobStatusCompleted, "completed"},
		{"failed", JobStatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.status) != tt.expected {
				t.Errorf("JobStatus %s = %q, want %q", tt.name, tt.status, tt.expected)
			}
		})
	}
}

func TestTrackStatus_Constants(t *testing.T) {
	tests := []struct {
		name     string
		status   TrackStatus
		expected string
	}{
		{"pending", TrackStatusPending, "pending"},
		{"importing", TrackStatusImporting, "importing"},
		{"completed", TrackStatusCompleted, "completed"},
		{"failed", TrackStatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.status) != tt.expected {
				t.Errorf("TrackStatus %s = %q, want %q", tt.name, tt.status, tt.expected)
			}
		})
	}
}

func TestStringSlice_ColumnEncoding(t *testing.T) {
	t.Run("empty encodes as empty array", func(t *testing.T) {
		for _, s := range []StringSlice{nil, {}} {
			v, err := s.Value()
			if err != nil {
				t.Fatalf("Value() error = %v", err)
			}
			if v != "[]" {
				t.Errorf("Value() = %v, want %q", v, "[]")
			}
		}
	})

	t.Run("round trip", func(t *testing.T) {
		in := StringSlice{"Rock", "isrc:XX0000000001"}
		v, err := in.Value()
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}

		var out StringSlice
		if err := out.Scan(v); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(out) != 2 || out[0] != "Rock" || out[1] != "isrc:XX0000000001" {
			t.Errorf("round trip = %v, want %v", out, in)
		}
	})

	t.Run("null column scans to nil", func(t *testing.T) {
		for _, src := range []interface{}{nil, "null", "", []byte(nil)} {
			s := StringSlice{"stale"}
			if err := s.Scan(src); err != nil {
				t.Fatalf("Scan(%v) error = %v", src, err)
			}
			if s != nil {
				t.Errorf("Scan(%v) = %v, want nil", src, s)
			}
		}
	})

	t.Run("unsupported source type", func(t *testing.T) {
		var s StringSlice
		if err := s.Scan(42); err == nil {
			t.Error("Scan(int) error = nil, want error")
		}
	})
}

func TestBasicGuess_HasArtist(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		want   bool
	}{
		{"real artist", "Radiohead", true},
		{"unknown sentinel", constants.UnknownArtist, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BasicGuess{Artist: tt.artist}
			if got := g.HasArtist(); got != tt.want {
				t.Errorf("HasArtist() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrack_ApplyReconciled(t *testing.T) {
	guess := BasicGuess{
		Artist: "Guess Artist",
		Album:  constants.UnknownAlbum,
		Title:  "Guess Title",
	}

	t.Run("nil metadata falls back to guess", func(t *testing.T) {
		var track Track
		track.ApplyReconciled(guess, nil)

		if track.Title != "Guess Title" {
			t.Errorf("Title = %q, want %q", track.Title, "Guess Title")
		}
		if track.Artist != "Guess Artist" {
			t.Errorf("Artist = %q, want %q", track.Artist, "Guess Artist")
		}
		if track.Album != constants.UnknownAlbum {
			t.Errorf("Album = %q, want %q", track.Album, constants.UnknownAlbum)
		}
		if track.Enriched {
			t.Error("Expected Enriched to stay false without metadata")
		}
	})

	t.Run("full metadata", func(t *testing.T) {
		meta := &ReconciledMetadata{
			Title:           "Real Title",
			Artist:          "Real Artist",
			Album:           "Real Album",
			ReleaseDate:     "2020-01-31",
			Genres:          StringSlice{"rock"},
			ExternalIDs:     StringSlice{"isrc:XX0000000001"},
			Popularity:      70,
			DurationSeconds: 180,
			Provider:        "spotify",
			ProviderID:      "sp1",
			Score:           0.9,
			Hybrid:          false,
		}

		var track Track
		track.ApplyReconciled(guess, meta)

		if track.Title != "Real Title" || track.Artist != "Real Artist" || track.Album != "Real Album" {
			t.Errorf("Naming = %q / %q / %q", track.Title, track.Artist, track.Album)
		}
		if track.MatchScore != 0.9 {
			t.Errorf("MatchScore = %f, want 0.9", track.MatchScore)
		}
		if track.Provider != "spotify" || track.ProviderID != "sp1" {
			t.Errorf("Provenance = %q / %q", track.Provider, track.ProviderID)
		}
		if !track.Enriched {
			t.Error("Expected Enriched to be true")
		}
		if track.Hybrid {
			t.Error("Expected Hybrid to be false")
		}
	})
}
