// Package actions implements the one-shot operations shared by submissions
// and comments: voting, saving, distinguishing, editing, gilding, deleting
// and toggling inbox replies.
package actions

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lionls/snoowrap/internal/client"
	"github.com/lionls/snoowrap/internal/models"
	"github.com/lionls/snoowrap/internal/parser"
)

// DistinguishHow is the "how" value of /api/distinguish
type DistinguishHow string

const (
	DistinguishModerator DistinguishHow = "yes"
	DistinguishNone      DistinguishHow = "no"
	DistinguishAdmin     DistinguishHow = "admin"
	DistinguishSpecial   DistinguishHow = "special"
)

var distinguishedAs = map[DistinguishHow]string{
	DistinguishModerator: "moderator",
	DistinguishNone:      "",
	DistinguishAdmin:     "admin",
	DistinguishSpecial:   "special",
}

type Actions struct {
	poster client.Poster
	parser parser.Parser
}

func New(poster client.Poster, p parser.Parser) *Actions {
	return &Actions{poster: poster, parser: p}
}

func (a *Actions) post(ctx context.Context, action string, t *models.Thing, path string, form url.Values) error {
	data, err := a.poster.PostForm(ctx, path, form)
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, t.Name, err)
	}
	if err := a.parser.CheckErrors(data); err != nil {
		return fmt.Errorf("%s %s: %w", action, t.Name, err)
	}
	return nil
}

func (a *Actions) vote(ctx context.Context, action string, t *models.Thing, dir int) (*models.Thing, error) {
	form := url.Values{"id": {t.Name}, "dir": {strconv.Itoa(dir)}}
	if err := a.post(ctx, action, t, "/api/vote", form); err != nil {
		return nil, err
	}

	switch dir {
	case 1:
		likes := true
		t.Likes = &likes
	case -1:
		likes := false
		t.Likes = &likes
	default:
		t.Likes = nil
	}
	return t, nil
}

// Upvote casts an upvote.
func (a *Actions) Upvote(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return a.vote(ctx, "upvote", t, 1)
}

// Downvote casts a downvote.
func (a *Actions) Downvote(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return a.vote(ctx, "downvote", t, -1)
}

// Unvote removes the current vote.
func (a *Actions) Unvote(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return a.vote(ctx, "unvote", t, 0)
}

func (a *Actions) Save(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	if err := a.post(ctx, "save", t, "/api/save", url.Values{"id": {t.Name}}); err != nil {
		return nil, err
	}
	t.Saved = true
	return t, nil
}

func (a *Actions) Unsave(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	if err := a.post(ctx, "unsave", t, "/api/unsave", url.Values{"id": {t.Name}}); err != nil {
		return nil, err
	}
	t.Saved = false
	return t, nil
}

// Distinguish marks the thing as posted in an official capacity. sticky
// only applies to top-level comments.
func (a *Actions) Distinguish(ctx context.Context, t *models.Thing, how DistinguishHow, sticky bool) (*models.Thing, error) {
	status, ok := distinguishedAs[how]
	if !ok {
		return nil, fmt.Errorf("distinguish %s: unknown status %q", t.Name, how)
	}

	form := url.Values{
		"id":     {t.Name},
		"how":    {string(how)},
		"sticky": {strconv.FormatBool(sticky)},
	}
	if err := a.post(ctx, "distinguish", t, "/api/distinguish", form); err != nil {
		return nil, err
	}

	t.Distinguished = status
	t.Stickied = sticky && how != DistinguishNone
	return t, nil
}

func (a *Actions) Undistinguish(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return a.Distinguish(ctx, t, DistinguishNone, false)
}

// Edit replaces the body of a comment or self post. The thing is updated
// from the server's copy of the edited text.
func (a *Actions) Edit(ctx context.Context, t *models.Thing, text string) (*models.Thing, error) {
	form := url.Values{"thing_id": {t.Name}, "text": {text}}
	data, err := a.poster.PostForm(ctx, "/api/editusertext", form)
	if err != nil {
		return nil, fmt.Errorf("edit %s: %w", t.Name, err)
	}

	edited, err := a.parser.ParseThingResponse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("edit %s: %w", t.Name, err)
	}

	if t.Kind == models.KindSubmission {
		t.Selftext = edited.Selftext
	} else {
		t.Body = edited.Body
	}
	t.Edited = true
	return t, nil
}

// Gild gives the author of the thing Reddit gold.
func (a *Actions) Gild(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	if err := a.post(ctx, "gild", t, "/api/v1/gold/gild/"+t.Name, nil); err != nil {
		return nil, err
	}
	t.Gilded++
	return t, nil
}

func (a *Actions) Delete(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	if err := a.post(ctx, "delete", t, "/api/del", url.Values{"id": {t.Name}}); err != nil {
		return nil, err
	}
	return t, nil
}

func (a *Actions) setInboxReplies(ctx context.Context, action string, t *models.Thing, state bool) (*models.Thing, error) {
	form := url.Values{"id": {t.Name}, "state": {strconv.FormatBool(state)}}
	if err := a.post(ctx, action, t, "/api/sendreplies", form); err != nil {
		return nil, err
	}
	t.SendReplies = state
	return t, nil
}

func (a *Actions) EnableInboxReplies(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return a.setInboxReplies(ctx, "enable inbox replies", t, true)
}

func (a *Actions) DisableInboxReplies(ctx context.Context, t *models.Thing) (*models.Thing, error) {
	return a.setInboxReplies(ctx, "disable inbox replies", t, false)
}
