// Package content loads submissions and comments and extends their reply
// listings on demand.
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lionls/snoowrap/internal/client"
	"github.com/lionls/snoowrap/internal/models"
	"github.com/lionls/snoowrap/internal/parser"
)

var ErrNotFound = errors.New("thing not found")

const maxMoreChildrenBatch = 100

type Fetcher struct {
	client    client.Fetcher
	parser    parser.Parser
	batchSize int
}

func NewFetcher(c client.Fetcher, p parser.Parser, batchSize int) *Fetcher {
	if batchSize < 1 || batchSize > maxMoreChildrenBatch {
		batchSize = maxMoreChildrenBatch
	}
	return &Fetcher{
		client:    c,
		parser:    p,
		batchSize: batchSize,
	}
}

// FetchThing reloads the fields of t from /api/info. The result is a new
// thing; the children listing of t is carried over untouched, since the
// info endpoint never returns replies. When t has no listing at all the
// result gets an empty one with a continue-thread stub that FetchMore fills
// from the comment page, so the result has a listing even where t had none.
func (f *Fetcher) FetchThing(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	fresh, err := f.Lookup(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	if children := t.Children(); children != nil {
		fresh.SetChildren(children)
	} else {
		fresh.SetChildren(unloaded(fresh))
	}
	return fresh, nil
}

// unloaded returns an empty listing for t whose stub points at t's own
// comment page.
func unloaded(t *models.Thing) *models.Listing {
	l := models.NewListing(t)
	l.More = &models.MoreChildren{
		ID:       "_",
		Name:     models.Fullname(models.KindMore, "_"),
		ParentID: t.Name,
	}
	return l
}

// Lookup returns the fields of a single thing, without children.
func (f *Fetcher) Lookup(ctx context.Context, name string) (*models.Thing, error) {
	data, err := f.client.FetchJSON(ctx, f.client.GetInfoURL(name))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}

	thing, err := f.parser.ParseInfo(ctx, data)
	if errors.Is(err, parser.ErrEmptyListing) {
		return nil, fmt.Errorf("fetch %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return thing, nil
}

// GetSubmission loads a submission with its comment forest.
func (f *Fetcher) GetSubmission(ctx context.Context, id string) (*models.Thing, error) {
	name := models.Fullname(models.KindSubmission, id)

	data, err := f.client.FetchJSON(ctx, f.client.GetCommentPageURL(name, ""))
	if err != nil {
		return nil, fmt.Errorf("fetch submission %s: %w", name, err)
	}

	submission, err := f.parser.ParseCommentPage(ctx, data)
	if errors.Is(err, parser.ErrEmptyListing) {
		return nil, fmt.Errorf("fetch submission %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("parse submission %s: %w", name, err)
	}
	return submission, nil
}

// GetComment loads a comment with its reply forest from the comment page
// focused on it.
func (f *Fetcher) GetComment(ctx context.Context, linkID, id string) (*models.Thing, error) {
	name := models.Fullname(models.KindComment, id)

	data, err := f.client.FetchJSON(ctx, f.client.GetCommentPageURL(linkID, name))
	if err != nil {
		return nil, fmt.Errorf("fetch comment %s: %w", name, err)
	}

	page, err := f.parser.ParseCommentPage(ctx, data)
	if errors.Is(err, parser.ErrEmptyListing) {
		return nil, fmt.Errorf("fetch comment %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("parse comment %s: %w", name, err)
	}

	for _, item := range page.Comments.Items {
		if item.Name == name {
			return item, nil
		}
	}
	return nil, fmt.Errorf("fetch comment %s: %w", name, ErrNotFound)
}

// GetThing resolves a fullname to a loaded submission or comment tree.
func (f *Fetcher) GetThing(ctx context.Context, name string) (*models.Thing, error) {
	switch models.KindOf(name) {
	case models.KindSubmission:
		return f.GetSubmission(ctx, name)
	case models.KindComment:
		thing, err := f.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		return f.GetComment(ctx, thing.LinkID, name)
	default:
		return nil, fmt.Errorf("unsupported thing %q: expected a t1_ or t3_ fullname", name)
	}
}

// FetchMore returns a listing holding every item of l, in order, followed
// by up to n children loaded from its "more" stub. A non-positive n, or a
// listing with nothing left to load, returns l itself without touching the
// network.
func (f *Fetcher) FetchMore(ctx context.Context, l *models.Listing, n int) (*models.Listing, error) {
	if n <= 0 || !l.HasMore() {
		return l, nil
	}
	if l.More.IsContinueThread() {
		return f.fetchContinued(ctx, l, n)
	}

	ids := l.More.Children
	take := min(n, len(ids))
	requested, remaining := ids[:take], ids[take:]

	var things []*models.Thing
	var stubs []*models.MoreChildren
	for i := 0; i < len(requested); i += f.batchSize {
		batch := requested[i:min(i+f.batchSize, len(requested))]

		data, err := f.client.FetchMoreChildren(ctx, l.LinkID, batch)
		if err != nil {
			return nil, fmt.Errorf("fetch more children of %s: %w", l.ParentName, err)
		}

		batchThings, batchStubs, err := f.parser.ParseMoreChildren(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("parse more children of %s: %w", l.ParentName, err)
		}
		things = append(things, batchThings...)
		stubs = append(stubs, batchStubs...)
	}

	roots, ownStubs := attach(l.ParentName, things, stubs)

	next := extend(l, roots)
	next.More = mergeStubs(l.More, remaining, take, ownStubs)

	log.Debug().
		Str("parent", l.ParentName).
		Int("requested", len(requested)).
		Int("added", next.Len()-l.Len()).
		Int("remaining", len(remaining)).
		Msg("Extended listing")

	return next, nil
}

// fetchContinued loads a "continue this thread" stub through the comment
// page of the listing owner.
func (f *Fetcher) fetchContinued(ctx context.Context, l *models.Listing, n int) (*models.Listing, error) {
	owner := l.More.ParentID
	if owner == "" {
		owner = l.ParentName
	}

	var parent *models.Thing
	var err error
	if models.KindOf(owner) == models.KindSubmission {
		parent, err = f.GetSubmission(ctx, owner)
	} else {
		parent, err = f.GetComment(ctx, l.LinkID, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("continue thread of %s: %w", owner, err)
	}

	var fresh []*models.Thing
	var overflow []string
	replies := parent.Children()
	if replies != nil {
		for _, item := range replies.Items {
			if l.Contains(item.Name) {
				continue
			}
			if len(fresh) < n {
				fresh = append(fresh, item)
				continue
			}
			overflow = append(overflow, item.ID)
		}
	}

	next := extend(l, fresh)
	if replies != nil && replies.More != nil {
		next.More = replies.More
	}
	if len(overflow) > 0 {
		if next.More == nil || next.More.IsContinueThread() {
			next.More = &models.MoreChildren{ParentID: l.ParentName}
		}
		next.More.Children = append(overflow, next.More.Children...)
		next.More.Count += len(overflow)
	}
	return next, nil
}

// extend copies l into a new listing and appends items.
func extend(l *models.Listing, items []*models.Thing) *models.Listing {
	next := &models.Listing{
		Items:      make([]*models.Thing, 0, len(l.Items)+len(items)),
		ParentName: l.ParentName,
		LinkID:     l.LinkID,
	}
	next.Items = append(next.Items, l.Items...)
	for _, item := range items {
		if next.Contains(item.Name) {
			continue
		}
		next.Items = append(next.Items, item)
	}
	return next
}

// attach rebuilds the tree of a flat morechildren response. Things whose
// parent is owner, or whose parent was not returned, become roots in
// response order. Stubs hanging off a returned thing are set on its
// replies; the ones belonging to owner are returned separately.
func attach(owner string, things []*models.Thing, stubs []*models.MoreChildren) ([]*models.Thing, []*models.MoreChildren) {
	byName := make(map[string]*models.Thing, len(things))
	for _, t := range things {
		byName[t.Name] = t
	}

	var roots []*models.Thing
	for _, t := range things {
		if t.ParentID == owner {
			roots = append(roots, t)
			continue
		}
		parent, ok := byName[t.ParentID]
		if !ok {
			log.Warn().Str("name", t.Name).Str("parent", t.ParentID).Msg("Parent not in response, adding at top level")
			roots = append(roots, t)
			continue
		}
		if parent.Replies == nil {
			parent.Replies = models.NewListing(parent)
		}
		parent.Replies.Items = append(parent.Replies.Items, t)
	}

	var own []*models.MoreChildren
	for _, s := range stubs {
		parent, ok := byName[s.ParentID]
		if !ok {
			own = append(own, s)
			continue
		}
		if parent.Replies == nil {
			parent.Replies = models.NewListing(parent)
		}
		if parent.Replies.More == nil {
			parent.Replies.More = s
			continue
		}
		parent.Replies.More.Children = append(parent.Replies.More.Children, s.Children...)
		parent.Replies.More.Count += s.Count
	}

	return roots, own
}

// mergeStubs builds the stub left after loading take IDs of prev.
func mergeStubs(prev *models.MoreChildren, remaining []string, take int, nested []*models.MoreChildren) *models.MoreChildren {
	children := append([]string(nil), remaining...)
	count := max(prev.Count-take, len(remaining))
	for _, s := range nested {
		children = append(children, s.Children...)
		count += s.Count
	}
	if len(children) == 0 {
		return nil
	}
	return &models.MoreChildren{
		ID:       prev.ID,
		Name:     prev.Name,
		ParentID: prev.ParentID,
		Count:    count,
		Children: children,
	}
}
