package guess

import (
	"fmt"
	"regexp"
	"strings"

	"soundsift/internal/domain"
)

// noiseQualifierRe matches parenthetical upload markers that providers never
// index as part of the song title.
var noiseQualifierRe = regexp.MustCompile(`(?i)\s*\((?:[^)]*(?:official|audio|video|music.?video|lyrics)[^)]*)\)`)

// BuildQueries expands a guess into an ordered list of provider search
// strings, most specific first. The list is a pure function of the guess and
// bounded by a small constant regardless of input length.
func BuildQueries(g domain.BasicGuess) []string {
	cleanTitle := CleanTitle(g.Title)
	if cleanTitle == "" {
		cleanTitle = strings.TrimSpace(g.Title)
	}

	var queries []string
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	if g.HasArtist() {
		artist := strings.TrimSpace(g.Artist)
		add(fmt.Sprintf(`artist:"%s" track:"%s"`, artist, cleanTitle))
		add(artist + " " + cleanTitle)
		add(cleanTitle + " " + artist)

		tokens := strings.Fields(artist)
		usedTokens := map[string]struct{}{strings.ToLower(artist): {}}
		if len(tokens) > 1 {
			for _, tok := range []string{tokens[0], tokens[len(tokens)-1]} {
				key := strings.ToLower(tok)
				if len(tok) <= 2 {
					continue
				}
				if _, ok := usedTokens[key]; ok {
					continue
				}
				usedTokens[key] = struct{}{}
				add(tok + " " + cleanTitle)
				add(cleanTitle + " " + tok)
			}
		}
	}

	add(fmt.Sprintf(`track:"%s"`, cleanTitle))
	add(cleanTitle)

	if words := strings.Fields(cleanTitle); len(words) > 2 {
		prefix := strings.Join(words[:2], " ")
		add(fmt.Sprintf(`track:"%s"`, prefix))
		add(prefix)
	}

	return queries
}

// CleanTitle strips parenthetical noise qualifiers from a title.
func CleanTitle(title string) string {
	cleaned := noiseQualifierRe.ReplaceAllString(title, "")
	return strings.TrimSpace(cleaned)
}
