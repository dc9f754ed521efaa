package providers

import (
	"context"

	"soundsift/internal/domain"
)

// MockProvider is a configurable in-memory Provider used in tests. It counts
// calls so orchestration tests can assert that lower-priority providers were
// never touched.
type MockProvider struct {
	ProviderName string
	Results      []domain.CandidateRecord
	Detail       *domain.CandidateRecord
	AlbumDetail  *domain.CandidateRecord
	SearchErr    error
	DetailsErr   error

	SearchCalls          int
	DetailsCalls         int
	DetailsForAlbumCalls int
	LastAlbumHint        string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{ProviderName: name}
}

func (p *MockProvider) Name() string { return p.ProviderName }

func (p *MockProvider) Search(ctx context.Context, query string) ([]domain.CandidateRecord, error) {
	p.SearchCalls++
	if p.SearchErr != nil {
		return nil, p.SearchErr
	}
	return p.Results, nil
}

func (p *MockProvider) Details(ctx context.Context, id string) (*domain.CandidateRecord, error) {
	p.DetailsCalls++
	if p.DetailsErr != nil {
		return nil, p.DetailsErr
	}
	if p.Detail != nil {
		return p.Detail, nil
	}
	for i := range p.Results {
		if p.Results[i].ID == id {
			c := p.Results[i]
			return &c, nil
		}
	}
	return nil, nil
}

// DetailsForAlbum records the album hint so orchestration tests can assert
// it was threaded through, then behaves like Details.
func (p *MockProvider) DetailsForAlbum(ctx context.Context, id, albumName string) (*domain.CandidateRecord, error) {
	p.DetailsForAlbumCalls++
	p.LastAlbumHint = albumName
	if p.DetailsErr != nil {
		return nil, p.DetailsErr
	}
	if p.AlbumDetail != nil {
		return p.AlbumDetail, nil
	}
	return p.Details(ctx, id)
}
