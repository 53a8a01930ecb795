// Package expand materializes reply forests under a branching and depth
// budget without touching the caller's copy of the tree.
package expand

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lionls/snoowrap/internal/metrics"
	"github.com/lionls/snoowrap/internal/models"
)

// Fetcher is the network side of an expansion.
type Fetcher interface {
	// FetchThing returns a refreshed copy of t.
	FetchThing(ctx context.Context, t *models.Thing) (*models.Thing, error)
	// FetchMore returns a listing holding all items of l followed by up to
	// n more. It must return l unchanged when n <= 0. It is only called
	// with n > 0 on listings that carry a "more" stub; listings without
	// one are treated as complete.
	FetchMore(ctx context.Context, l *models.Listing, n int) (*models.Listing, error)
}

type Expander struct {
	fetcher        Fetcher
	maxConcurrency int
}

// NewExpander returns an Expander. maxConcurrency bounds the sibling
// subtrees expanded at once under each node; 0 means no bound.
func NewExpander(fetcher Fetcher, maxConcurrency int) *Expander {
	return &Expander{
		fetcher:        fetcher,
		maxConcurrency: maxConcurrency,
	}
}

// ExpandReplies refreshes root, deep-copies it and loads more replies into
// the copy: at every node up to opts.Limit children are ensured and the
// first opts.Limit of them are expanded recursively, opts.Depth levels
// deep. root itself is never modified. Any fetch error aborts the whole
// expansion and no tree is returned.
func (e *Expander) ExpandReplies(ctx context.Context, root *models.Thing, opts Options) (*models.Thing, error) {
	start := time.Now()
	run := &expansion{
		id:             uuid.NewString(),
		fetcher:        e.fetcher,
		limit:          opts.Limit.Value(),
		maxConcurrency: e.maxConcurrency,
	}

	logger := log.With().Str("expansion_id", run.id).Str("name", root.Name).Logger()
	logger.Debug().
		Stringer("limit", opts.Limit).
		Stringer("depth", opts.Depth).
		Msg("Expanding replies")

	tree, err := run.expandRoot(ctx, root, opts.Depth.Value())

	metrics.ExpansionsTotal.WithLabelValues(metrics.Result(err)).Inc()
	metrics.ExpansionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Warn().Err(err).Int64("fetches", run.fetches.Load()).Msg("Expansion failed")
		return nil, fmt.Errorf("expand replies of %s: %w", root.Name, err)
	}

	logger.Info().
		Int64("fetches", run.fetches.Load()).
		Int("nodes", tree.Count()).
		Dur("duration", time.Since(start)).
		Msg("Expansion complete")

	return tree, nil
}

type expansion struct {
	id             string
	fetcher        Fetcher
	limit          int
	maxConcurrency int
	fetches        atomic.Int64
}

func (x *expansion) expandRoot(ctx context.Context, root *models.Thing, depth int) (*models.Thing, error) {
	fresh, err := x.fetcher.FetchThing(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	tree, err := fresh.Clone()
	if err != nil {
		return nil, err
	}
	if depth <= 0 {
		// nothing will be fetched, so keep the caller's shape
		if root.Children() == nil {
			tree.SetChildren(nil)
		}
		return tree, nil
	}

	if err := x.expandNode(ctx, tree, depth); err != nil {
		return nil, err
	}
	return tree, nil
}

// expandNode grows the children of node in place. node belongs to the
// private copy, and each call only writes its own node, so sibling calls
// may run concurrently.
func (x *expansion) expandNode(ctx context.Context, node *models.Thing, depth int) error {
	if depth <= 0 {
		return nil
	}

	children := node.Children()
	if shortfall := x.limit - children.Len(); shortfall > 0 && children.HasMore() {
		x.fetches.Add(1)
		metrics.ExpansionFetchesTotal.Inc()

		more, err := x.fetcher.FetchMore(ctx, children, shortfall)
		if err != nil {
			return err
		}
		node.SetChildren(more)
		children = more
	}

	targets := max(0, min(x.limit, children.Len()))
	if targets == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if x.maxConcurrency > 0 {
		g.SetLimit(x.maxConcurrency)
	}
	for _, child := range children.Items[:targets] {
		child := child
		g.Go(func() error {
			return x.expandNode(gctx, child, depth-1)
		})
	}
	return g.Wait()
}
