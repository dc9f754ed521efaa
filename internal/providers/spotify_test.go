package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newSpotifyTestServer(t *testing.T, tokenCalls *int, searchHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if tokenCalls != nil {
			*tokenCalls++
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/search", searchHandler)
	return httptest.NewServer(mux)
}

func newTestSpotify(srv *httptest.Server) *SpotifyProvider {
	p := NewSpotifyProvider("id", "secret")
	p.APIURL = srv.URL
	p.TokenURL = srv.URL + "/api/token"
	return p
}

func TestSpotifySearch_MapsCandidates(t *testing.T) {
	var tokenCalls int
	srv := newSpotifyTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if q := r.URL.Query().Get("q"); q == "" {
			t.Error("missing q parameter")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"id":          "abc",
						"name":        "Bohemian Rhapsody",
						"popularity":  84,
						"duration_ms": 354000,
						"artists":     []map[string]string{{"id": "q1", "name": "Queen"}},
						"album": map[string]interface{}{
							"id":           "alb1",
							"name":         "A Night at the Opera",
							"release_date": "1975-11-21",
							"images":       []map[string]string{{"url": "https://img/cover.jpg"}},
						},
					},
				},
			},
		})
	})
	defer srv.Close()

	p := newTestSpotify(srv)
	candidates, err := p.Search(context.Background(), `artist:"Queen" track:"Bohemian Rhapsody"`)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Provider != "spotify" || c.ID != "abc" {
		t.Errorf("identity = %s/%s", c.Provider, c.ID)
	}
	if c.Title != "Bohemian Rhapsody" || c.ArtistName != "Queen" || c.AlbumName != "A Night at the Opera" {
		t.Errorf("mapping wrong: %+v", c)
	}
	if c.Popularity != 84 || c.DurationSeconds != 354 {
		t.Errorf("numeric fields wrong: pop=%d dur=%d", c.Popularity, c.DurationSeconds)
	}
	if c.CoverURL != "https://img/cover.jpg" || c.ReleaseDate != "1975-11-21" {
		t.Errorf("enrichment fields wrong: %+v", c)
	}
}

func TestSpotifySearch_TokenCachedAcrossCalls(t *testing.T) {
	var tokenCalls int
	srv := newSpotifyTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{"items": []interface{}{}},
		})
	})
	defer srv.Close()

	p := newTestSpotify(srv)
	for i := 0; i < 3; i++ {
		if _, err := p.Search(context.Background(), "anything"); err != nil {
			t.Fatalf("Search() error = %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Errorf("token exchanged %d times, want 1", tokenCalls)
	}
}

func TestSpotifySearch_ExpiredTokenRefreshed(t *testing.T) {
	var tokenCalls int
	srv := newSpotifyTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{"items": []interface{}{}},
		})
	})
	defer srv.Close()

	p := newTestSpotify(srv)
	if _, err := p.Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	p.mu.Lock()
	p.tokenExpiry = time.Now().Add(-time.Second)
	p.mu.Unlock()
	if _, err := p.Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if tokenCalls != 2 {
		t.Errorf("token exchanged %d times, want 2", tokenCalls)
	}
}

func TestSpotifySearch_ServerErrorReturnsError(t *testing.T) {
	srv := newSpotifyTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	p := newTestSpotify(srv)
	candidates, err := p.Search(context.Background(), "x")
	if err == nil {
		t.Error("Search() error = nil, want error on 500")
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates on failure, want 0", len(candidates))
	}
}

func TestSpotifySearch_TokenExchangeFailure(t *testing.T) {
	p := NewSpotifyProvider("wrong", "creds")
	srv := newSpotifyTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()
	p.APIURL = srv.URL
	p.TokenURL = srv.URL + "/api/token"

	if _, err := p.Search(context.Background(), "x"); err == nil {
		t.Error("Search() error = nil, want token failure")
	}
}

func TestSpotifyDetails_FollowsArtistAndAlbum(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/tracks/abc", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   "abc",
			"name": "Hurt",
			"artists": []map[string]string{
				{"id": "nin", "name": "Nine Inch Nails"},
			},
			"album": map[string]interface{}{
				"id": "tds", "name": "The Downward Spiral", "release_date": "1994",
			},
			"external_ids": map[string]string{"isrc": "USIR19400325"},
		})
	})
	mux.HandleFunc("/artists/nin", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"genres": []string{"industrial rock", "industrial"},
		})
	})
	mux.HandleFunc("/albums/tds", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"release_date": "1994-03-08",
			"genres":       []string{"industrial"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestSpotify(srv)
	c, err := p.Details(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if c.ReleaseDate != "1994-03-08" {
		t.Errorf("ReleaseDate = %q, want album precision", c.ReleaseDate)
	}
	if len(c.Genres) != 2 {
		t.Errorf("Genres = %v, want deduplicated artist+album genres", c.Genres)
	}
	found := false
	for _, id := range c.ExternalIDs {
		if id == "isrc:USIR19400325" {
			found = true
		}
	}
	if !found {
		t.Errorf("ExternalIDs = %v, missing ISRC", c.ExternalIDs)
	}
}
