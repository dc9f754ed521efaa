package match

import (
	"strings"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
)

// Component weights. The threshold is deliberately conservative: a wrong
// candidate rejected costs only enrichment, a wrong candidate accepted
// corrupts the record.
const (
	titleExactWeight     = 0.6
	titleSubstringWeight = 0.4
	titleOverlapWeight   = 0.3
	artistExactWeight    = 0.3
	artistSubstrWeight   = 0.2
	popularityBonus      = 0.1
	popularityFloor      = 50
)

// Threshold is the score a candidate must strictly exceed to be accepted.
const Threshold = constants.AcceptThreshold

// Score computes a confidence in [0, 1] that the candidate is the recording
// the guess describes. Deterministic and side-effect free.
func Score(candidate domain.CandidateRecord, g domain.BasicGuess) float64 {
	score := titleComponent(candidate.Title, g.Title)
	score += artistComponent(candidate.ArtistName, g)

	if candidate.Popularity > popularityFloor {
		score += popularityBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Accepted reports whether a score clears the acceptance threshold.
func Accepted(score float64) bool {
	return score > Threshold
}

func titleComponent(candidateTitle, guessTitle string) float64 {
	a := NormalizeTitle(candidateTitle)
	b := NormalizeTitle(guessTitle)

	switch {
	case a != "" && a == b:
		return titleExactWeight
	case containsEither(a, b):
		return titleSubstringWeight
	default:
		return titleOverlapWeight * tokenOverlap(a, b)
	}
}

func artistComponent(candidateArtist string, g domain.BasicGuess) float64 {
	if !g.HasArtist() {
		return 0
	}

	a := strings.ToLower(strings.TrimSpace(candidateArtist))
	b := strings.ToLower(strings.TrimSpace(g.Artist))

	switch {
	case a != "" && a == b:
		return artistExactWeight
	case containsEither(a, b):
		return artistSubstrWeight
	default:
		return 0
	}
}

// Agree is the coarser post-acceptance safety net: it re-checks that the
// candidate and the guess agree on both title and artist by normalized
// substring containment. A candidate that scored past the threshold but
// fails this check keeps its supplementary fields only (hybrid record).
// An unknown guess artist has nothing to disagree with and passes vacuously.
func Agree(candidate domain.CandidateRecord, g domain.BasicGuess) bool {
	ct := NormalizeTitle(candidate.Title)
	gt := NormalizeTitle(g.Title)
	if ct != gt && !containsEither(ct, gt) {
		return false
	}

	if !g.HasArtist() {
		return true
	}
	ca := strings.ToLower(strings.TrimSpace(candidate.ArtistName))
	ga := strings.ToLower(strings.TrimSpace(g.Artist))
	return ca == ga || containsEither(ca, ga)
}
