// Package providers contains the metadata source adapters. Each adapter
// wraps one external catalog behind the same small capability set and maps
// its responses onto domain.CandidateRecord, so nothing downstream ever sees
// a provider-specific shape.
package providers

import (
	"context"

	"soundsift/internal/domain"
)

// Provider is the capability set the reconciler drives. Search returns an
// empty slice for an empty result set; transport and status failures come
// back as errors and are treated as "this provider yielded nothing" by the
// caller, never as a pipeline abort.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]domain.CandidateRecord, error)
	Details(ctx context.Context, id string) (*domain.CandidateRecord, error)
}

// AlbumDetailer is an optional capability for providers whose detail
// response spans several releases of the same recording. When the guess
// names a real album the reconciler routes the detail fetch through it, so
// the release picked for date and cover art is the one the label refers to.
type AlbumDetailer interface {
	DetailsForAlbum(ctx context.Context, id, albumName string) (*domain.CandidateRecord, error)
}
