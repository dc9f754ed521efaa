package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
)

const spotifySearchLimit = 5

// SpotifyProvider is the primary adapter. It needs a client-credentials
// token exchange; the token is cached per adapter instance with an expiry
// skew so it never expires mid-request. Re-acquiring a token concurrently is
// idempotent, the mutex only keeps the cache fields consistent.
type SpotifyProvider struct {
	APIURL       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Client       *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewSpotifyProvider(clientID, clientSecret string) *SpotifyProvider {
	return &SpotifyProvider{
		APIURL:       constants.DefaultSpotifyAPIURL,
		TokenURL:     constants.DefaultSpotifyTokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

func (p *SpotifyProvider) Name() string { return "spotify" }

func (p *SpotifyProvider) Search(ctx context.Context, query string) ([]domain.CandidateRecord, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify token: %w", err)
	}

	u := fmt.Sprintf("%s/search?type=track&limit=%d&q=%s", p.APIURL, spotifySearchLimit, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("spotify search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify search returned status %d", resp.StatusCode)
	}

	var result struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("spotify search decode: %w", err)
	}

	candidates := make([]domain.CandidateRecord, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		candidates = append(candidates, item.toCandidate())
	}
	return candidates, nil
}

// Details re-fetches the track and follows up on the matched artist and
// album, which is where Spotify keeps genres and the precise release date.
func (p *SpotifyProvider) Details(ctx context.Context, id string) (*domain.CandidateRecord, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify token: %w", err)
	}

	var track spotifyTrack
	if err := p.get(ctx, token, "/tracks/"+url.PathEscape(id), &track); err != nil {
		return nil, fmt.Errorf("spotify track details: %w", err)
	}

	candidate := track.toCandidate()
	if track.ExternalIDs.ISRC != "" {
		candidate.ExternalIDs = append(candidate.ExternalIDs, "isrc:"+track.ExternalIDs.ISRC)
	}

	if len(track.Artists) > 0 && track.Artists[0].ID != "" {
		var artist struct {
			Genres []string `json:"genres"`
		}
		if err := p.get(ctx, token, "/artists/"+url.PathEscape(track.Artists[0].ID), &artist); err == nil {
			candidate.Genres = append(candidate.Genres, artist.Genres...)
		}
	}

	if track.Album.ID != "" {
		var album struct {
			Genres      []string `json:"genres"`
			ReleaseDate string   `json:"release_date"`
			Label       string   `json:"label"`
		}
		if err := p.get(ctx, token, "/albums/"+url.PathEscape(track.Album.ID), &album); err == nil {
			candidate.Genres = append(candidate.Genres, album.Genres...)
			if album.ReleaseDate != "" {
				candidate.ReleaseDate = album.ReleaseDate
			}
		}
	}

	candidate.Genres = dedupeStrings(candidate.Genres)
	return &candidate, nil
}

func (p *SpotifyProvider) get(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.APIURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// accessToken returns the cached token, exchanging client credentials for a
// fresh one when the cache is empty or past its skewed expiry.
func (p *SpotifyProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty token")
	}

	p.token = tok.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - constants.TokenExpirySkew)
	return p.token, nil
}

type spotifyTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	DurationMs int    `json:"duration_ms"`
	Artists    []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

func (t spotifyTrack) toCandidate() domain.CandidateRecord {
	c := domain.CandidateRecord{
		Provider:        "spotify",
		ID:              t.ID,
		Title:           t.Name,
		AlbumName:       t.Album.Name,
		ReleaseDate:     t.Album.ReleaseDate,
		Popularity:      t.Popularity,
		DurationSeconds: t.DurationMs / 1000,
		ExternalIDs:     domain.StringSlice{"spotify:" + t.ID},
	}
	if len(t.Artists) > 0 {
		c.ArtistName = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		c.CoverURL = t.Album.Images[0].URL
	}
	return c
}

func dedupeStrings(in domain.StringSlice) domain.StringSlice {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
