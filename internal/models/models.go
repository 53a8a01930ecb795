package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/copystructure"
)

// Kind is the Reddit type prefix of a thing
type Kind string

const (
	KindComment    Kind = "t1"
	KindSubmission Kind = "t3"
	KindMore       Kind = "more"
)

// KindOf returns the kind encoded in a fullname such as "t1_abc123".
func KindOf(fullname string) Kind {
	prefix, _, ok := strings.Cut(fullname, "_")
	if !ok {
		return ""
	}
	return Kind(prefix)
}

// Fullname joins a kind and a base36 id.
func Fullname(kind Kind, id string) string {
	if strings.HasPrefix(id, string(kind)+"_") {
		return id
	}
	return string(kind) + "_" + id
}

// Thing is a submission or a comment node of a reply forest
// swagger:model Thing
type Thing struct {
	// Thing kind: t1 for comments, t3 for submissions
	Kind Kind `json:"kind"`
	// Base36 ID
	ID string `json:"id"`
	// Fullname, e.g. t1_abc123
	Name string `json:"name"`
	// Fullname of the parent thing (comments only)
	ParentID string `json:"parent_id,omitempty"`
	// Fullname of the submission the thing belongs to
	LinkID string `json:"link_id,omitempty"`
	// Author's username
	Author string `json:"author"`
	// Subreddit name
	Subreddit string `json:"subreddit,omitempty"`
	// Submission title
	Title string `json:"title,omitempty"`
	// Comment body
	Body string `json:"body,omitempty"`
	// Submission self text
	Selftext string `json:"selftext,omitempty"`
	// Permalink path
	Permalink string `json:"permalink,omitempty"`
	// Link URL of a submission
	URL string `json:"url,omitempty"`
	// Score (upvotes minus downvotes)
	Score int `json:"score"`
	// Vote of the authenticated user: true up, false down, nil none
	Likes *bool `json:"likes"`
	// Saved by the authenticated user
	Saved bool `json:"saved"`
	// Distinguish status: "", "moderator", "admin" or "special"
	Distinguished string `json:"distinguished,omitempty"`
	// Stickied by a moderator
	Stickied bool `json:"stickied"`
	// Number of times gilded
	Gilded int `json:"gilded"`
	// Whether replies are sent to the author's inbox
	SendReplies bool `json:"send_replies"`
	// Whether the thing was edited
	Edited bool `json:"edited"`
	// Creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// Comment forest of a submission
	Comments *Listing `json:"comments,omitempty"`
	// Replies of a comment
	Replies *Listing `json:"replies,omitempty"`
}

// Children returns the listing that holds the direct children of t. The
// field depends on the kind: submissions keep them in Comments, every other
// kind in Replies.
func (t *Thing) Children() *Listing {
	if t.Kind == KindSubmission {
		return t.Comments
	}
	return t.Replies
}

// SetChildren replaces the children listing of t wholesale.
func (t *Thing) SetChildren(l *Listing) {
	if t.Kind == KindSubmission {
		t.Comments = l
		return
	}
	t.Replies = l
}

// SubmissionName returns the fullname of the submission t belongs to.
func (t *Thing) SubmissionName() string {
	if t.Kind == KindSubmission {
		return t.Name
	}
	return t.LinkID
}

// Clone returns a deep copy of t. No pointer, slice or nested thing of the
// copy is shared with t.
func (t *Thing) Clone() (*Thing, error) {
	if t == nil {
		return nil, nil
	}
	dup, err := copystructure.Copy(t)
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", t.Name, err)
	}
	return dup.(*Thing), nil
}

// Count returns the number of materialized things in the tree rooted at t,
// t included.
func (t *Thing) Count() int {
	n := 1
	if l := t.Children(); l != nil {
		for _, child := range l.Items {
			n += child.Count()
		}
	}
	return n
}

// Listing is an ordered, partially loaded list of child things
// swagger:model Listing
type Listing struct {
	// Materialized children in display order
	Items []*Thing `json:"items"`
	// Stub for children that are not loaded yet
	More *MoreChildren `json:"more,omitempty"`
	// Fullname of the thing owning this listing
	ParentName string `json:"parent_name,omitempty"`
	// Fullname of the submission the listing belongs to
	LinkID string `json:"link_id,omitempty"`
}

// NewListing returns an empty listing owned by t.
func NewListing(t *Thing) *Listing {
	return &Listing{
		ParentName: t.Name,
		LinkID:     t.SubmissionName(),
	}
}

// Len returns the number of materialized items. A nil listing is empty.
func (l *Listing) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// HasMore reports whether the listing can be extended by a fetch.
func (l *Listing) HasMore() bool {
	return l != nil && l.More != nil && (len(l.More.Children) > 0 || l.More.IsContinueThread())
}

// Contains reports whether a thing with the given fullname is one of the
// materialized items.
func (l *Listing) Contains(name string) bool {
	if l == nil {
		return false
	}
	for _, item := range l.Items {
		if item.Name == name {
			return true
		}
	}
	return false
}

// MoreChildren is a "load more comments" stub
// swagger:model MoreChildren
type MoreChildren struct {
	// Stub ID
	ID string `json:"id"`
	// Stub fullname
	Name string `json:"name"`
	// Fullname of the thing the hidden children belong to
	ParentID string `json:"parent_id"`
	// Number of hidden descendants
	Count int `json:"count"`
	// Base36 IDs of the hidden children
	Children []string `json:"children"`
}

// IsContinueThread reports whether the stub is a "continue this thread"
// link, which carries no IDs and must be loaded through the parent's page.
func (m *MoreChildren) IsContinueThread() bool {
	return m != nil && len(m.Children) == 0 && (m.ID == "_" || m.Count == 0)
}

// RawChild is an internal structure used for parsing Reddit API responses
type RawChild struct {
	Kind string       `json:"kind"`
	Data RawThingData `json:"data"`
}

// RawThingData holds the union of fields used across t1, t3 and more
type RawThingData struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ParentID      string          `json:"parent_id"`
	LinkID        string          `json:"link_id"`
	Author        string          `json:"author"`
	Subreddit     string          `json:"subreddit"`
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	Selftext      string          `json:"selftext"`
	Permalink     string          `json:"permalink"`
	URL           string          `json:"url"`
	Score         int             `json:"score"`
	Likes         *bool           `json:"likes"`
	Saved         bool            `json:"saved"`
	Distinguished *string         `json:"distinguished"`
	Stickied      bool            `json:"stickied"`
	Gilded        int             `json:"gilded"`
	SendReplies   bool            `json:"send_replies"`
	Edited        json.RawMessage `json:"edited"`
	CreatedUTC    float64         `json:"created_utc"`
	Replies       json.RawMessage `json:"replies"`
	Children      []string        `json:"children"`
	Count         int             `json:"count"`
	Depth         int             `json:"depth"`
}

// RawListing is the envelope of a Reddit listing
type RawListing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []RawChild `json:"children"`
		After    string     `json:"after"`
		Before   string     `json:"before"`
	} `json:"data"`
}
