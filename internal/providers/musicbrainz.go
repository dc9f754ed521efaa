package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	edlib "github.com/hbollon/go-edlib"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
)

const (
	mbUserAgent        = "soundsift/1.0 (https://soundsift.local)"
	mbSearchLimit      = 5
	mbRequestInterval  = 1050 * time.Millisecond
	mbReleaseThreshold = 0.85
)

// mbGenreMap folds MusicBrainz community tags into broad genres; unmapped
// tags pass through unchanged.
var mbGenreMap = map[string]string{
	"alternative rock":  "Rock",
	"indie rock":        "Rock",
	"hard rock":         "Rock",
	"punk rock":         "Rock",
	"garage rock":       "Rock",
	"grunge":            "Rock",
	"heavy metal":       "Metal",
	"death metal":       "Metal",
	"thrash metal":      "Metal",
	"nu metal":          "Metal",
	"indie pop":         "Pop",
	"synthpop":          "Pop",
	"synth-pop":         "Pop",
	"dance pop":         "Pop",
	"electropop":        "Pop",
	"hip hop":           "Hip-Hop",
	"rap":               "Hip-Hop",
	"trap":              "Hip-Hop",
	"r&b":               "R&B",
	"soul":              "R&B",
	"neo soul":          "R&B",
	"funk":              "R&B",
	"edm":               "Electronic",
	"house":             "Electronic",
	"techno":            "Electronic",
	"trance":            "Electronic",
	"drum and bass":     "Electronic",
	"dubstep":           "Electronic",
	"trip hop":          "Electronic",
	"reggaeton":         "Latin",
	"salsa":             "Latin",
	"bachata":           "Latin",
	"americana":         "Country",
	"alt-country":       "Country",
	"smooth jazz":       "Jazz",
	"bebop":             "Jazz",
	"indie folk":        "Folk",
	"dancehall":         "Reggae",
	"ska":               "Reggae",
	"film score":        "Soundtrack",
	"classical crossover": "Classical",
}

// MusicBrainzProvider is the tertiary adapter: free-text recording search
// against the open database, no API key, and a courtesy rate limit of one
// request per second enforced across the adapter instance.
type MusicBrainzProvider struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

func NewMusicBrainzProvider(baseURL string) *MusicBrainzProvider {
	return &MusicBrainzProvider{
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		UserAgent: mbUserAgent,
		Client:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

func (p *MusicBrainzProvider) Name() string { return "musicbrainz" }

func (p *MusicBrainzProvider) Search(ctx context.Context, query string) ([]domain.CandidateRecord, error) {
	u := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=%d", p.BaseURL, url.QueryEscape(query), mbSearchLimit)

	var result struct {
		Recordings []mbRecording `json:"recordings"`
	}
	if err := p.get(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("musicbrainz search: %w", err)
	}

	candidates := make([]domain.CandidateRecord, 0, len(result.Recordings))
	for _, rec := range result.Recordings {
		candidates = append(candidates, rec.toCandidate(""))
	}
	return candidates, nil
}

// Details fetches the recording with releases and tags included; the search
// response alone carries no release, label or genre information.
func (p *MusicBrainzProvider) Details(ctx context.Context, id string) (*domain.CandidateRecord, error) {
	u := fmt.Sprintf("%s/recording/%s?inc=artists+releases+release-groups+artist-credits+tags&fmt=json",
		p.BaseURL, url.PathEscape(id))

	var rec mbRecording
	if err := p.get(ctx, u, &rec); err != nil {
		return nil, fmt.Errorf("musicbrainz recording details: %w", err)
	}

	candidate := rec.toCandidate("")
	candidate.Genres = extractGenres(rec.Tags)
	return &candidate, nil
}

// DetailsForAlbum is Details with an album hint used to pick the release
// the guess most likely refers to.
func (p *MusicBrainzProvider) DetailsForAlbum(ctx context.Context, id, albumName string) (*domain.CandidateRecord, error) {
	u := fmt.Sprintf("%s/recording/%s?inc=artists+releases+release-groups+artist-credits+tags&fmt=json",
		p.BaseURL, url.PathEscape(id))

	var rec mbRecording
	if err := p.get(ctx, u, &rec); err != nil {
		return nil, fmt.Errorf("musicbrainz recording details: %w", err)
	}

	candidate := rec.toCandidate(albumName)
	candidate.Genres = extractGenres(rec.Tags)
	return &candidate, nil
}

// get performs a rate-limited GET with retries. MusicBrainz asks anonymous
// clients to stay at or below one request per second.
func (p *MusicBrainzProvider) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *MusicBrainzProvider) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if elapsed := time.Since(p.lastRequest); elapsed < mbRequestInterval {
			time.Sleep(mbRequestInterval - elapsed)
		}
		p.lastRequest = time.Now()

		resp, err := p.Client.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * constants.DefaultRetryBase)
	}
	return nil, lastErr
}

// selectRelease picks the release whose title best matches the album hint,
// falling back to the first release. Jaro-Winkler tolerates the punctuation
// and edition-suffix drift release titles accumulate.
func selectRelease(releases []mbRelease, albumName string) *mbRelease {
	if len(releases) == 0 {
		return nil
	}
	if albumName == "" || albumName == constants.UnknownAlbum {
		return &releases[0]
	}

	best := -1
	bestSim := float32(0)
	for i := range releases {
		sim, err := edlib.StringsSimilarity(
			strings.ToLower(releases[i].Title),
			strings.ToLower(albumName),
			edlib.JaroWinkler,
		)
		if err != nil {
			continue
		}
		if sim > bestSim {
			bestSim = sim
			best = i
		}
	}
	if best >= 0 && bestSim >= mbReleaseThreshold {
		return &releases[best]
	}
	return &releases[0]
}

// extractGenres aggregates community tags by vote count, folding known
// sub-genres into their broad genre, and returns them most-voted first.
func extractGenres(tags []mbTag) domain.StringSlice {
	counts := make(map[string]int)
	for _, t := range tags {
		if t.Count <= 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			continue
		}
		if mapped, ok := mbGenreMap[name]; ok {
			counts[mapped] += t.Count
		} else {
			counts[t.Name] += t.Count
		}
	}
	if len(counts) == 0 {
		return nil
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})
	return genres
}

type mbRecording struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Length       int    `json:"length"`
	Score        int    `json:"score"`
	ArtistCredit []struct {
		Artist struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"artist-credit"`
	Releases []mbRelease `json:"releases"`
	Tags     []mbTag     `json:"tags"`
}

type mbRelease struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	ReleaseGroup struct {
		ID string `json:"id"`
	} `json:"release-group"`
	LabelInfo []struct {
		Label struct {
			Name string `json:"name"`
		} `json:"label"`
	} `json:"label-info"`
}

type mbTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (r mbRecording) toCandidate(albumHint string) domain.CandidateRecord {
	c := domain.CandidateRecord{
		Provider:        "musicbrainz",
		ID:              r.ID,
		Title:           r.Title,
		AlbumName:       constants.UnknownAlbum,
		DurationSeconds: r.Length / 1000,
		ExternalIDs:     domain.StringSlice{"mbid:" + r.ID},
	}
	if len(r.ArtistCredit) > 0 {
		c.ArtistName = r.ArtistCredit[0].Artist.Name
	}
	if rel := selectRelease(r.Releases, albumHint); rel != nil {
		if rel.Title != "" {
			c.AlbumName = rel.Title
		}
		c.ReleaseDate = rel.Date
		// Cover Art Archive serves front covers by release MBID.
		c.CoverURL = fmt.Sprintf("https://coverartarchive.org/release/%s/front", rel.ID)
	}
	return c
}
