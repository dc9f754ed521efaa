// Package match scores how well a provider candidate agrees with the
// metadata guessed from a raw video label.
package match

import (
	"regexp"
	"strings"
)

var (
	qualifierParenRe = regexp.MustCompile(`(?i)\s*\((?:[^)]*(?:official|audio|video|music.?video|lyrics)[^)]*)\)`)
	featParenRe      = regexp.MustCompile(`(?i)\s*\((?:feat\.?|ft\.?|featuring)[^)]*\)`)
	bracketRe        = regexp.MustCompile(`\s*\[[^\]]*\]`)
	punctRe          = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a title to a comparable form: lower-cased, with
// upload-noise parentheticals, featuring credits and bracketed annotations
// removed, and punctuation collapsed to spaces.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = qualifierParenRe.ReplaceAllString(s, "")
	s = featParenRe.ReplaceAllString(s, "")
	s = bracketRe.ReplaceAllString(s, "")
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// tokenOverlap returns |common tokens| / max(|a|, |b|) over whitespace
// tokens of two normalized strings.
func tokenOverlap(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}

	common := 0
	counted := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		if _, dup := counted[t]; dup {
			continue
		}
		counted[t] = struct{}{}
		if _, ok := setA[t]; ok {
			common++
		}
	}

	denom := len(tokensA)
	if len(tokensB) > denom {
		denom = len(tokensB)
	}
	return float64(common) / float64(denom)
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
