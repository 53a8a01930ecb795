package parser

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const commentPage = `[
  {"kind": "Listing", "data": {"children": [
    {"kind": "t3", "data": {"id": "post", "name": "t3_post", "title": "Hello", "selftext": "hi", "author": "op",
      "subreddit": "golang", "score": 12, "created_utc": 1700000000, "edited": false, "distinguished": null}}
  ]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {"id": "c1", "name": "t1_c1", "parent_id": "t3_post", "link_id": "t3_post", "body": "first",
      "edited": 1700000100.0, "distinguished": "moderator", "likes": true,
      "replies": {"kind": "Listing", "data": {"children": [
        {"kind": "t1", "data": {"id": "r1", "parent_id": "t1_c1", "link_id": "t3_post", "body": "reply", "replies": ""}},
        {"kind": "more", "data": {"id": "m1", "name": "t1_m1", "parent_id": "t1_c1", "count": 2, "children": ["r2", "r3"]}}
      ]}}}},
    {"kind": "t1", "data": {"id": "c2", "name": "t1_c2", "parent_id": "t3_post", "link_id": "t3_post", "body": "second", "replies": ""}},
    {"kind": "more", "data": {"id": "m0", "name": "t1_m0", "parent_id": "t3_post", "count": 1, "children": ["c3"]}},
    {"kind": "more", "data": {"id": "m9", "name": "t1_m9", "parent_id": "t3_post", "count": 1, "children": ["c4"]}}
  ]}}
]`

func TestParseCommentPage(t *testing.T) {
	p := NewRedditParser()
	submission, err := p.ParseCommentPage(context.Background(), json.RawMessage(commentPage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if submission.Name != "t3_post" || submission.Title != "Hello" || submission.Score != 12 {
		t.Errorf("unexpected submission fields: %+v", submission)
	}
	if !submission.CreatedAt.Equal(time.Unix(1700000000, 0)) || submission.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC creation time, got %v", submission.CreatedAt)
	}
	if submission.Edited {
		t.Error("expected submission not to be edited")
	}
	if submission.Replies != nil {
		t.Error("submission children belong in Comments")
	}

	comments := submission.Comments
	if comments == nil || len(comments.Items) != 2 {
		t.Fatalf("expected 2 top-level comments, got %+v", comments)
	}
	if comments.ParentName != "t3_post" || comments.LinkID != "t3_post" {
		t.Errorf("unexpected listing owner: %q %q", comments.ParentName, comments.LinkID)
	}
	if comments.More == nil || len(comments.More.Children) != 2 || comments.More.Count != 2 {
		t.Errorf("expected stubs to be folded into one, got %+v", comments.More)
	}

	c1 := comments.Items[0]
	if !c1.Edited || c1.Distinguished != "moderator" || c1.Likes == nil || !*c1.Likes {
		t.Errorf("unexpected comment fields: %+v", c1)
	}
	if c1.Replies == nil || len(c1.Replies.Items) != 1 {
		t.Fatalf("expected one reply, got %+v", c1.Replies)
	}
	r1 := c1.Replies.Items[0]
	if r1.Name != "t1_r1" {
		t.Errorf("expected name to be derived from id, got %q", r1.Name)
	}
	if r1.Replies != nil {
		t.Errorf("empty replies string should give no listing, got %+v", r1.Replies)
	}
	if c1.Replies.More == nil || c1.Replies.More.Count != 2 {
		t.Errorf("expected a stub on c1's replies, got %+v", c1.Replies.More)
	}

	if comments.Items[1].Replies != nil {
		t.Errorf("expected c2 to have no replies listing")
	}
}

func TestParseCommentPage_Malformed(t *testing.T) {
	p := NewRedditParser()
	ctx := context.Background()

	if _, err := p.ParseCommentPage(ctx, json.RawMessage(`{"kind":"Listing"}`)); err == nil {
		t.Error("expected error for non-array page")
	}
	if _, err := p.ParseCommentPage(ctx, json.RawMessage(`[{"kind":"Listing","data":{"children":[]}}]`)); err == nil {
		t.Error("expected error for a single listing")
	}
	_, err := p.ParseCommentPage(ctx, json.RawMessage(`[{"kind":"Listing","data":{"children":[]}},{"kind":"Listing","data":{"children":[]}}]`))
	if !errors.Is(err, ErrEmptyListing) {
		t.Errorf("expected ErrEmptyListing, got %v", err)
	}
}

func TestParseInfo(t *testing.T) {
	p := NewRedditParser()
	ctx := context.Background()

	thing, err := p.ParseInfo(ctx, json.RawMessage(`{"kind":"Listing","data":{"children":[
		{"kind":"t1","data":{"id":"c1","name":"t1_c1","link_id":"t3_post","score":5,"replies":""}}]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thing.Name != "t1_c1" || thing.LinkID != "t3_post" || thing.Score != 5 {
		t.Errorf("unexpected thing: %+v", thing)
	}

	_, err = p.ParseInfo(ctx, json.RawMessage(`{"kind":"Listing","data":{"children":[]}}`))
	if !errors.Is(err, ErrEmptyListing) {
		t.Errorf("expected ErrEmptyListing, got %v", err)
	}
}

func TestParseMoreChildren(t *testing.T) {
	p := NewRedditParser()
	ctx := context.Background()

	wrapped := `{"json":{"errors":[],"data":{"things":[
		{"kind":"t1","data":{"id":"a","name":"t1_a","parent_id":"t3_post","replies":""}},
		{"kind":"t1","data":{"id":"b","name":"t1_b","parent_id":"t1_a","replies":""}},
		{"kind":"more","data":{"id":"m","parent_id":"t1_a","count":3,"children":["x","y","z"]}}]}}}`

	things, stubs, err := p.ParseMoreChildren(ctx, json.RawMessage(wrapped))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(things) != 2 || things[1].ParentID != "t1_a" {
		t.Errorf("expected flat list with parent links, got %+v", things)
	}
	if len(stubs) != 1 || stubs[0].Name != "more_m" || len(stubs[0].Children) != 3 {
		t.Errorf("unexpected stubs: %+v", stubs)
	}

	direct := `[{"kind":"t1","data":{"id":"a","name":"t1_a","parent_id":"t3_post","replies":""}}]`
	things, _, err = p.ParseMoreChildren(ctx, json.RawMessage(direct))
	if err != nil || len(things) != 1 {
		t.Errorf("expected direct array to parse, got %v, %v", things, err)
	}

	if _, _, err := p.ParseMoreChildren(ctx, json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCheckErrors(t *testing.T) {
	p := NewRedditParser()

	err := p.CheckErrors(json.RawMessage(`{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != "RATELIMIT" || apiErr.Field != "ratelimit" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
	if apiErr.Error() != "reddit api error RATELIMIT: you are doing that too much (ratelimit)" {
		t.Errorf("unexpected message: %s", apiErr.Error())
	}

	for _, body := range []string{``, `{}`, `{"json":{"errors":[]}}`, `[1,2]`} {
		if err := p.CheckErrors(json.RawMessage(body)); err != nil {
			t.Errorf("expected no error for %q, got %v", body, err)
		}
	}
}

func TestParseThingResponse(t *testing.T) {
	p := NewRedditParser()
	thing, err := p.ParseThingResponse(context.Background(), json.RawMessage(`{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"c1","body":"edited"}}]}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thing.Body != "edited" || thing.Name != "t1_c1" {
		t.Errorf("unexpected thing: %+v", thing)
	}

	_, err = p.ParseThingResponse(context.Background(), json.RawMessage(`{"json":{"errors":[],"data":{"things":[]}}}`))
	if !errors.Is(err, ErrEmptyListing) {
		t.Errorf("expected ErrEmptyListing, got %v", err)
	}
}

func TestParse_CancelledContext(t *testing.T) {
	p := NewRedditParser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if thing, err := p.ParseCommentPage(ctx, json.RawMessage(commentPage)); !errors.Is(err, context.Canceled) || thing != nil {
		t.Errorf("expected context.Canceled and no tree, got %v, %+v", err, thing)
	}

	more := `{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"a","replies":""}}]}}}`
	if _, _, err := p.ParseMoreChildren(ctx, json.RawMessage(more)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	info := `{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"c1","replies":""}}]}}`
	if _, err := p.ParseInfo(ctx, json.RawMessage(info)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
