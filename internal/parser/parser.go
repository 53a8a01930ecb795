// internal/parser/parser.go
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lionls/snoowrap/internal/models"
	"github.com/rs/zerolog/log"
)

var ErrEmptyListing = errors.New("empty listing")

// APIError is an error reported inside a json envelope, e.g. RATELIMIT
type APIError struct {
	Code    string
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("reddit api error %s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("reddit api error %s: %s", e.Code, e.Message)
}

type RedditParser struct{}

func NewRedditParser() *RedditParser {
	return &RedditParser{}
}

// ParseInfo parses an /api/info response and returns its first thing.
func (p *RedditParser) ParseInfo(ctx context.Context, data json.RawMessage) (*models.Thing, error) {
	var listing models.RawListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("parse info JSON: %w", err)
	}

	for _, child := range listing.Data.Children {
		if child.Kind == string(models.KindComment) || child.Kind == string(models.KindSubmission) {
			thing := p.convert(ctx, child)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return thing, nil
		}
	}
	return nil, ErrEmptyListing
}

// ParseCommentPage parses a /comments/<link>[/_/<comment>] response and
// returns the submission with its comment forest. On a page focused on a
// single comment the forest holds just that comment.
func (p *RedditParser) ParseCommentPage(ctx context.Context, data json.RawMessage) (*models.Thing, error) {
	var blocks []models.RawListing
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("parse comment page JSON: %w", err)
	}
	if len(blocks) != 2 {
		return nil, fmt.Errorf("parse comment page: expected 2 listings, got %d", len(blocks))
	}
	if len(blocks[0].Data.Children) == 0 {
		return nil, fmt.Errorf("parse comment page: %w", ErrEmptyListing)
	}

	submission := p.convert(ctx, blocks[0].Data.Children[0])
	comments, err := p.processChildren(ctx, blocks[1].Data.Children, submission.Name, submission.Name)
	if err != nil {
		return nil, err
	}
	// nested reply listings stop early on cancellation too
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	submission.Comments = comments

	return submission, nil
}

// ParseMoreChildren parses an /api/morechildren response into the flat list
// of returned comments and any nested "more" stubs. Parent links are kept
// in ParentID so callers can rebuild the tree.
func (p *RedditParser) ParseMoreChildren(ctx context.Context, data json.RawMessage) ([]*models.Thing, []*models.MoreChildren, error) {
	if err := p.CheckErrors(data); err != nil {
		return nil, nil, err
	}

	var wrapper struct {
		JSON struct {
			Data struct {
				Things []models.RawChild `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}

	if err := json.Unmarshal(data, &wrapper); err != nil {
		var directThings []models.RawChild
		if err2 := json.Unmarshal(data, &directThings); err2 != nil {
			return nil, nil, fmt.Errorf("parse more children JSON: %w", err)
		}
		wrapper.JSON.Data.Things = directThings
	}

	var things []*models.Thing
	var stubs []*models.MoreChildren
	for _, raw := range wrapper.JSON.Data.Things {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		switch models.Kind(raw.Kind) {
		case models.KindComment:
			things = append(things, p.convert(ctx, raw))
		case models.KindMore:
			stubs = append(stubs, convertMore(raw))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	log.Debug().
		Int("things", len(things)).
		Int("stubs", len(stubs)).
		Msg("Parsed morechildren response")

	return things, stubs, nil
}

// ParseThingResponse parses the json envelope returned by endpoints such as
// /api/editusertext and returns the updated thing.
func (p *RedditParser) ParseThingResponse(ctx context.Context, data json.RawMessage) (*models.Thing, error) {
	if err := p.CheckErrors(data); err != nil {
		return nil, err
	}

	var wrapper struct {
		JSON struct {
			Data struct {
				Things []models.RawChild `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse thing response JSON: %w", err)
	}
	if len(wrapper.JSON.Data.Things) == 0 {
		return nil, ErrEmptyListing
	}
	thing := p.convert(ctx, wrapper.JSON.Data.Things[0])
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return thing, nil
}

// CheckErrors returns an *APIError for the first entry of json.errors.
// Responses without an envelope are accepted.
func (p *RedditParser) CheckErrors(data json.RawMessage) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var envelope struct {
		JSON struct {
			Errors [][]string `json:"errors"`
		} `json:"json"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil
	}
	if len(envelope.JSON.Errors) == 0 {
		return nil
	}

	first := envelope.JSON.Errors[0]
	apiErr := &APIError{}
	if len(first) > 0 {
		apiErr.Code = first[0]
	}
	if len(first) > 1 {
		apiErr.Message = first[1]
	}
	if len(first) > 2 {
		apiErr.Field = first[2]
	}
	return apiErr
}

func (p *RedditParser) convert(ctx context.Context, child models.RawChild) *models.Thing {
	d := child.Data
	kind := models.Kind(child.Kind)

	thing := &models.Thing{
		Kind:        kind,
		ID:          d.ID,
		Name:        d.Name,
		ParentID:    d.ParentID,
		LinkID:      d.LinkID,
		Author:      d.Author,
		Subreddit:   d.Subreddit,
		Title:       d.Title,
		Body:        d.Body,
		Selftext:    d.Selftext,
		Permalink:   d.Permalink,
		URL:         d.URL,
		Score:       d.Score,
		Likes:       d.Likes,
		Saved:       d.Saved,
		Stickied:    d.Stickied,
		Gilded:      d.Gilded,
		SendReplies: d.SendReplies,
		Edited:      parseEdited(d.Edited),
		CreatedAt:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}
	if thing.Name == "" && d.ID != "" {
		thing.Name = models.Fullname(kind, d.ID)
	}
	if d.Distinguished != nil {
		thing.Distinguished = *d.Distinguished
	}

	if kind == models.KindComment {
		thing.Replies = p.parseReplies(ctx, d.Replies, thing)
	}

	return thing
}

// parseReplies handles the "replies" field of a comment, which is either an
// empty string or a full listing.
func (p *RedditParser) parseReplies(ctx context.Context, raw json.RawMessage, owner *models.Thing) *models.Listing {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var replies models.RawListing
	if err := json.Unmarshal(trimmed, &replies); err != nil {
		log.Warn().Err(err).Str("name", owner.Name).Msg("Skipping malformed replies listing")
		return nil
	}

	listing, err := p.processChildren(ctx, replies.Data.Children, owner.Name, owner.SubmissionName())
	if err != nil {
		return nil
	}
	return listing
}

func (p *RedditParser) processChildren(ctx context.Context, children []models.RawChild, parentName, linkID string) (*models.Listing, error) {
	listing := &models.Listing{
		Items:      []*models.Thing{},
		ParentName: parentName,
		LinkID:     linkID,
	}

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch models.Kind(child.Kind) {
		case models.KindComment:
			listing.Items = append(listing.Items, p.convert(ctx, child))
		case models.KindMore:
			stub := convertMore(child)
			if listing.More == nil {
				listing.More = stub
				continue
			}
			// Reddit sends a single stub per listing; fold any extra one in.
			listing.More.Children = append(listing.More.Children, stub.Children...)
			listing.More.Count += stub.Count
		}
	}

	return listing, nil
}

func convertMore(child models.RawChild) *models.MoreChildren {
	d := child.Data
	name := d.Name
	if name == "" && d.ID != "" {
		name = models.Fullname(models.KindMore, d.ID)
	}
	return &models.MoreChildren{
		ID:       d.ID,
		Name:     name,
		ParentID: d.ParentID,
		Count:    d.Count,
		Children: append([]string(nil), d.Children...),
	}
}

// parseEdited accepts Reddit's edited field, which is false or a timestamp.
func parseEdited(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "false" && s != "null"
}
