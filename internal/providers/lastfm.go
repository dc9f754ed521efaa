package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
)

const lastfmSearchLimit = 5

// lastfmPopularityCap is the listener count mapped to popularity 100; the
// scale is logarithmic because listener counts span several orders of
// magnitude.
const lastfmPopularityCap = 1_000_000

// LastFMProvider is the secondary adapter: a static API key, no token
// exchange, and weaker structured fields than Spotify (no popularity on
// search results, approximate duration).
type LastFMProvider struct {
	APIURL string
	APIKey string
	Client *http.Client
}

func NewLastFMProvider(apiKey string) *LastFMProvider {
	return &LastFMProvider{
		APIURL: constants.DefaultLastFMURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

func (p *LastFMProvider) Name() string { return "lastfm" }

func (p *LastFMProvider) Search(ctx context.Context, query string) ([]domain.CandidateRecord, error) {
	params := url.Values{}
	params.Set("method", "track.search")
	params.Set("track", query)
	params.Set("api_key", p.APIKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(lastfmSearchLimit))

	var result struct {
		Results struct {
			TrackMatches struct {
				Track []struct {
					Name      string `json:"name"`
					Artist    string `json:"artist"`
					MBID      string `json:"mbid"`
					Listeners string `json:"listeners"`
					Image     []struct {
						URL  string `json:"#text"`
						Size string `json:"size"`
					} `json:"image"`
				} `json:"track"`
			} `json:"trackmatches"`
		} `json:"results"`
	}
	if err := p.get(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("lastfm search: %w", err)
	}

	tracks := result.Results.TrackMatches.Track
	candidates := make([]domain.CandidateRecord, 0, len(tracks))
	for _, t := range tracks {
		c := domain.CandidateRecord{
			Provider:   "lastfm",
			ID:         trackID(t.MBID, t.Artist, t.Name),
			Title:      t.Name,
			ArtistName: t.Artist,
			AlbumName:  constants.UnknownAlbum,
		}
		for _, img := range t.Image {
			if img.Size == "extralarge" && img.URL != "" {
				c.CoverURL = img.URL
			}
		}
		if t.MBID != "" {
			c.ExternalIDs = domain.StringSlice{"lastfm-mbid:" + t.MBID}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Details calls track.getInfo, which is where Last.fm reports album, tags,
// listeners and (when it has one) the track duration.
func (p *LastFMProvider) Details(ctx context.Context, id string) (*domain.CandidateRecord, error) {
	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("api_key", p.APIKey)
	params.Set("format", "json")
	mbid, artist, track := splitTrackID(id)
	if mbid != "" {
		params.Set("mbid", mbid)
	} else {
		params.Set("artist", artist)
		params.Set("track", track)
	}

	var result struct {
		Track struct {
			Name     string `json:"name"`
			MBID     string `json:"mbid"`
			Duration string `json:"duration"`
			Artist   struct {
				Name string `json:"name"`
			} `json:"artist"`
			Album struct {
				Title string `json:"title"`
				Image []struct {
					URL  string `json:"#text"`
					Size string `json:"size"`
				} `json:"image"`
			} `json:"album"`
			Listeners string `json:"listeners"`
			TopTags   struct {
				Tag []struct {
					Name string `json:"name"`
				} `json:"tag"`
			} `json:"toptags"`
		} `json:"track"`
	}
	if err := p.get(ctx, params, &result); err != nil {
		return nil, fmt.Errorf("lastfm track info: %w", err)
	}

	t := result.Track
	if t.Name == "" {
		return nil, fmt.Errorf("lastfm track info: empty response for %q", id)
	}

	c := &domain.CandidateRecord{
		Provider:   "lastfm",
		ID:         id,
		Title:      t.Name,
		ArtistName: t.Artist.Name,
		AlbumName:  t.Album.Title,
		Popularity: listenersToPopularity(t.Listeners),
	}
	if c.AlbumName == "" {
		c.AlbumName = constants.UnknownAlbum
	}
	if ms, err := strconv.Atoi(t.Duration); err == nil && ms > 0 {
		c.DurationSeconds = ms / 1000
	}
	for _, img := range t.Album.Image {
		if img.Size == "extralarge" && img.URL != "" {
			c.CoverURL = img.URL
		}
	}
	for _, tag := range t.TopTags.Tag {
		if tag.Name != "" {
			c.Genres = append(c.Genres, tag.Name)
		}
	}
	if t.MBID != "" {
		c.ExternalIDs = domain.StringSlice{"lastfm-mbid:" + t.MBID}
	}
	return c, nil
}

func (p *LastFMProvider) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.APIURL+"/?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lastfm returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// listenersToPopularity maps a raw listener count onto the 0-100 popularity
// scale the scorer expects, log-scaled and capped at one million listeners.
func listenersToPopularity(listeners string) int {
	n, err := strconv.Atoi(listeners)
	if err != nil || n <= 0 {
		return 0
	}
	if n >= lastfmPopularityCap {
		return 100
	}
	pop := int(math.Round(100 * math.Log10(float64(n)+1) / math.Log10(lastfmPopularityCap+1)))
	if pop > 100 {
		pop = 100
	}
	return pop
}

// trackID packs the fields track.getInfo needs into one opaque id. An MBID
// is preferred; otherwise artist and title are joined with a separator that
// cannot appear in either.
func trackID(mbid, artist, track string) string {
	if mbid != "" {
		return "mbid:" + mbid
	}
	return artist + "\x1f" + track
}

func splitTrackID(id string) (mbid, artist, track string) {
	if rest, ok := strings.CutPrefix(id, "mbid:"); ok {
		return rest, "", ""
	}
	if artist, track, ok := strings.Cut(id, "\x1f"); ok {
		return "", artist, track
	}
	return "", "", id
}
