// Package reconcile drives metadata reconciliation: parse the raw label,
// query providers in priority order, score the candidates, and produce the
// record to persist — enriched, hybrid, or nothing.
package reconcile

import (
	"context"

	"soundsift/internal/domain"
	"soundsift/internal/guess"
	"soundsift/internal/logger"
	"soundsift/internal/match"
	"soundsift/internal/providers"
)

// Reconciler tries providers strictly in the order given; the first provider
// whose best candidate clears the threshold wins, and later providers are
// never consulted. Provider priority stays meaningful that way: a
// better-looking score from a lower-priority source must not override an
// accepted higher-priority match.
type Reconciler struct {
	providers []providers.Provider
	logger    *logger.Logger
}

func New(provs []providers.Provider, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Default()
	}
	return &Reconciler{
		providers: provs,
		logger:    log.WithComponent("reconcile"),
	}
}

// Reconcile parses the label and reconciles the resulting guess against the
// providers. It returns the guess alongside the reconciled record; the
// record is nil when no provider produced an acceptable candidate, in which
// case the caller falls back to the guess alone. Reconcile never returns an
// error: provider failures are logged as skips and the flow always
// terminates in a value.
func (r *Reconciler) Reconcile(ctx context.Context, label string) (domain.BasicGuess, *domain.ReconciledMetadata) {
	g := guess.Parse(label)
	queries := guess.BuildQueries(g)

	for _, provider := range r.providers {
		plog := r.logger.WithProvider(provider.Name())

		best := r.bestCandidate(ctx, provider, queries, g, plog)
		if !match.Accepted(best.Score) {
			plog.Debug("No acceptable candidate", "best_score", best.Score)
			continue
		}

		accepted := best.Candidate
		if detail, err := r.details(ctx, provider, accepted.ID, g); err != nil {
			plog.Warn("Details fetch failed, keeping search result", "candidate_id", accepted.ID, "error", err)
		} else if detail != nil {
			detail.Popularity = maxInt(detail.Popularity, accepted.Popularity)
			accepted = *detail
		}

		result := r.assemble(accepted, g, best.Score)
		plog.Info("Candidate accepted",
			"candidate_id", accepted.ID,
			"score", best.Score,
			"hybrid", result.Hybrid,
		)
		return g, result
	}

	r.logger.Debug("No provider produced an acceptable match", "title", g.Title)
	return g, nil
}

// details fetches the full record for an accepted candidate, routing through
// the provider's album-hinted lookup when it offers one and the guess names
// a real album.
func (r *Reconciler) details(ctx context.Context, p providers.Provider, id string, g domain.BasicGuess) (*domain.CandidateRecord, error) {
	if ad, ok := p.(providers.AlbumDetailer); ok && g.HasAlbum() {
		return ad.DetailsForAlbum(ctx, id, g.Album)
	}
	return p.Details(ctx, id)
}

// bestCandidate walks the query variants in order, scoring every returned
// candidate, and stops early once a query has produced an accepted one.
// Search failures skip to the next variant.
func (r *Reconciler) bestCandidate(ctx context.Context, p providers.Provider, queries []string, g domain.BasicGuess, plog *logger.Logger) domain.ScoredCandidate {
	var best domain.ScoredCandidate
	for _, q := range queries {
		candidates, err := p.Search(ctx, q)
		if err != nil {
			plog.Debug("Search failed, skipping query", "query", q, "error", err)
			continue
		}
		for _, c := range candidates {
			score := match.Score(c, g)
			if score > best.Score {
				best = domain.ScoredCandidate{Candidate: c, Score: score}
			}
		}
		if match.Accepted(best.Score) {
			break
		}
	}
	return best
}

// assemble builds the final record from an accepted candidate. When the
// candidate fails the post-acceptance agreement check the guess keeps naming
// the track and only supplementary fields are imported.
func (r *Reconciler) assemble(c domain.CandidateRecord, g domain.BasicGuess, score float64) *domain.ReconciledMetadata {
	if match.Agree(c, g) {
		return &domain.ReconciledMetadata{
			Title:           c.Title,
			Artist:          c.ArtistName,
			Album:           c.AlbumName,
			ReleaseDate:     c.ReleaseDate,
			CoverURL:        c.CoverURL,
			Provider:        c.Provider,
			ProviderID:      c.ID,
			Genres:          c.Genres,
			ExternalIDs:     c.ExternalIDs,
			Popularity:      c.Popularity,
			DurationSeconds: c.DurationSeconds,
			Score:           score,
		}
	}

	// Field-level disagreement after acceptance: demote, don't discard.
	return &domain.ReconciledMetadata{
		Title:       g.Title,
		Artist:      g.Artist,
		Album:       g.Album,
		ReleaseDate: c.ReleaseDate,
		CoverURL:    c.CoverURL,
		Provider:    c.Provider,
		ProviderID:  c.ID,
		Genres:      c.Genres,
		ExternalIDs: c.ExternalIDs,
		Popularity:  c.Popularity,
		Score:       score,
		Hybrid:      true,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
