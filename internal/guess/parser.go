// Package guess infers structured song metadata from the free-text labels
// that video platforms attach to uploads, and expands a guess into provider
// search queries.
package guess

import (
	"regexp"
	"strings"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
)

var (
	// "Title (Qualifier) - Artist". Checked before the generic dash rule
	// because that rule would mis-split the qualifier into the artist field.
	qualifierArtistRe = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*-\s*(.+)$`)

	// "Title (Qualifier)" with no artist part.
	qualifierOnlyRe = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)

	yearRe = regexp.MustCompile(`^\d{4}$`)

	dashSplitRe = regexp.MustCompile(`\s+-\s+`)
)

// videoQualifiers mark a parenthetical as upload noise rather than part of
// the song title.
var videoQualifiers = []string{"official", "video", "audio", "lyrics", "remaster"}

// Parse turns a raw video label into a BasicGuess. It never fails: when no
// rule matches, the whole trimmed label becomes the title and artist/album
// keep their sentinel values.
func Parse(label string) domain.BasicGuess {
	trimmed := strings.TrimSpace(label)

	g := domain.BasicGuess{
		Artist: constants.UnknownArtist,
		Album:  constants.UnknownAlbum,
		Title:  trimmed,
	}
	if trimmed == "" {
		return g
	}

	// Rule 1: "Title (Year/Edition) - Artist"
	if m := qualifierArtistRe.FindStringSubmatch(trimmed); m != nil {
		if isEditionQualifier(m[2]) {
			g.Title = strings.TrimSpace(m[1])
			g.Artist = strings.TrimSpace(m[3])
			return g
		}
	}

	// Rule 2: dash-separated "Artist - Title" or "Artist - Album - Title"
	if parts := dashSplitRe.Split(trimmed, -1); len(parts) >= 2 {
		switch len(parts) {
		case 2:
			g.Artist = strings.TrimSpace(parts[0])
			g.Title = strings.TrimSpace(parts[1])
			return g
		case 3:
			g.Artist = strings.TrimSpace(parts[0])
			g.Album = strings.TrimSpace(parts[1])
			g.Title = strings.TrimSpace(parts[2])
			return g
		}
	}

	// Rule 3: "Title (Official Video)" and similar upload noise
	if m := qualifierOnlyRe.FindStringSubmatch(trimmed); m != nil {
		if isVideoQualifier(m[2]) {
			g.Title = strings.TrimSpace(m[1])
			return g
		}
	}

	// Rule 4: "Artist : Title"
	if i := strings.Index(trimmed, ":"); i > 0 && i < len(trimmed)-1 {
		left := strings.TrimSpace(trimmed[:i])
		right := strings.TrimSpace(trimmed[i+1:])
		if left != "" && right != "" {
			g.Artist = left
			g.Title = right
			return g
		}
	}

	// Rule 5: fallback, the whole label is the title.
	return g
}

// isEditionQualifier accepts a parenthetical as a year/edition marker: a
// bare four-digit year, or anything mentioning a remaster or edition.
func isEditionQualifier(q string) bool {
	q = strings.TrimSpace(q)
	if yearRe.MatchString(q) {
		return true
	}
	lower := strings.ToLower(q)
	return strings.Contains(lower, "remaster") || strings.Contains(lower, "edition")
}

func isVideoQualifier(q string) bool {
	lower := strings.ToLower(q)
	for _, marker := range videoQualifiers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
