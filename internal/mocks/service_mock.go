package mocks

import (
	"context"

	"github.com/lionls/snoowrap/internal/expand"
	"github.com/lionls/snoowrap/internal/models"
	"github.com/lionls/snoowrap/internal/service"
)

type MockThingService struct {
	GetThingFunc func(ctx context.Context, name string) (*models.Thing, error)
	ExpandFunc   func(ctx context.Context, name string, opts expand.Options) (models.ExpandResponse, error)
	ApplyFunc    func(ctx context.Context, name, action string, params service.ActionParams) (*models.Thing, error)
}

func (m *MockThingService) GetThing(ctx context.Context, name string) (*models.Thing, error) {
	return m.GetThingFunc(ctx, name)
}

func (m *MockThingService) Expand(ctx context.Context, name string, opts expand.Options) (models.ExpandResponse, error) {
	return m.ExpandFunc(ctx, name, opts)
}

func (m *MockThingService) Apply(ctx context.Context, name, action string, params service.ActionParams) (*models.Thing, error) {
	return m.ApplyFunc(ctx, name, action, params)
}
