// internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lionls/snoowrap/internal/actions"
	"github.com/lionls/snoowrap/internal/content"
	"github.com/lionls/snoowrap/internal/expand"
	"github.com/lionls/snoowrap/internal/models"
)

var ErrUnknownAction = errors.New("unknown action")

// ThingService defines the operations exposed over HTTP and the CLI
type ThingService interface {
	GetThing(ctx context.Context, name string) (*models.Thing, error)
	Expand(ctx context.Context, name string, opts expand.Options) (models.ExpandResponse, error)
	Apply(ctx context.Context, name, action string, params ActionParams) (*models.Thing, error)
}

// ActionParams carries the arguments of actions that take any
type ActionParams struct {
	Text   string
	How    actions.DistinguishHow
	Sticky bool
}

type actionFunc func(ctx context.Context, a *actions.Actions, t *models.Thing, p ActionParams) (*models.Thing, error)

var actionTable = map[string]actionFunc{
	"upvote":   simple((*actions.Actions).Upvote),
	"downvote": simple((*actions.Actions).Downvote),
	"unvote":   simple((*actions.Actions).Unvote),
	"save":     simple((*actions.Actions).Save),
	"unsave":   simple((*actions.Actions).Unsave),
	"distinguish": func(ctx context.Context, a *actions.Actions, t *models.Thing, p ActionParams) (*models.Thing, error) {
		how := p.How
		if how == "" {
			how = actions.DistinguishModerator
		}
		return a.Distinguish(ctx, t, how, p.Sticky)
	},
	"undistinguish": simple((*actions.Actions).Undistinguish),
	"edit": func(ctx context.Context, a *actions.Actions, t *models.Thing, p ActionParams) (*models.Thing, error) {
		return a.Edit(ctx, t, p.Text)
	},
	"gild":                  simple((*actions.Actions).Gild),
	"delete":                simple((*actions.Actions).Delete),
	"enable_inbox_replies":  simple((*actions.Actions).EnableInboxReplies),
	"disable_inbox_replies": simple((*actions.Actions).DisableInboxReplies),
}

func simple(fn func(*actions.Actions, context.Context, *models.Thing) (*models.Thing, error)) actionFunc {
	return func(ctx context.Context, a *actions.Actions, t *models.Thing, _ ActionParams) (*models.Thing, error) {
		return fn(a, ctx, t)
	}
}

// ActionNames lists the supported actions in sorted order.
func ActionNames() []string {
	names := make([]string, 0, len(actionTable))
	for name := range actionTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type thingService struct {
	content  *content.Fetcher
	expander *expand.Expander
	actions  *actions.Actions
}

func NewThingService(c *content.Fetcher, e *expand.Expander, a *actions.Actions) ThingService {
	return &thingService{
		content:  c,
		expander: e,
		actions:  a,
	}
}

func (s *thingService) GetThing(ctx context.Context, name string) (*models.Thing, error) {
	return s.content.GetThing(ctx, name)
}

// Expand loads the thing named name and returns an expanded copy of it.
func (s *thingService) Expand(ctx context.Context, name string, opts expand.Options) (models.ExpandResponse, error) {
	startTime := time.Now()

	root, err := s.content.GetThing(ctx, name)
	if err != nil {
		return models.ExpandResponse{}, fmt.Errorf("load %s: %w", name, err)
	}
	before := root.Count()

	tree, err := s.expander.ExpandReplies(ctx, root, opts)
	if err != nil {
		return models.ExpandResponse{}, err
	}

	return models.ExpandResponse{
		Thing: tree,
		Meta: models.ExpandMeta{
			Name:             name,
			Limit:            opts.Limit.Ptr(),
			Depth:            opts.Depth.Ptr(),
			NodesBefore:      before,
			NodesAfter:       tree.Count(),
			ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		},
	}, nil
}

// Apply runs a one-shot action on the thing named name.
func (s *thingService) Apply(ctx context.Context, name, action string, params ActionParams) (*models.Thing, error) {
	fn, ok := actionTable[action]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	thing, err := s.content.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return fn(ctx, s.actions, thing, params)
}
