package mocks

import (
	"context"

	"github.com/lionls/snoowrap/internal/models"
)

type MockFetcher struct {
	FetchThingFunc func(ctx context.Context, t *models.Thing) (*models.Thing, error)
	FetchMoreFunc  func(ctx context.Context, l *models.Listing, n int) (*models.Listing, error)
}

func (m *MockFetcher) FetchThing(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return m.FetchThingFunc(ctx, t)
}

func (m *MockFetcher) FetchMore(ctx context.Context, l *models.Listing, n int) (*models.Listing, error) {
	return m.FetchMoreFunc(ctx, l, n)
}
