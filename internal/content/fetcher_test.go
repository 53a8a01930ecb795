package content_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionls/snoowrap/internal/content"
	"github.com/lionls/snoowrap/internal/mocks"
	"github.com/lionls/snoowrap/internal/models"
	"github.com/lionls/snoowrap/internal/parser"
)

type obj = map[string]any

func rawComment(id, parent string, replies ...obj) obj {
	data := obj{
		"id":        id,
		"name":      "t1_" + id,
		"parent_id": parent,
		"link_id":   "t3_post",
		"author":    "user_" + id,
		"body":      "body of " + id,
		"replies":   "",
	}
	if len(replies) > 0 {
		data["replies"] = listing(replies...)
	}
	return obj{"kind": "t1", "data": data}
}

func rawMore(id, parent string, children ...string) obj {
	return obj{"kind": "more", "data": obj{
		"id":        id,
		"name":      "t1_" + id,
		"parent_id": parent,
		"count":     len(children),
		"children":  children,
	}}
}

func rawSubmission() obj {
	return obj{"kind": "t3", "data": obj{"id": "post", "name": "t3_post", "title": "a post", "score": 10}}
}

func listing(children ...obj) obj {
	if children == nil {
		children = []obj{}
	}
	return obj{"kind": "Listing", "data": obj{"children": children}}
}

func moreChildrenResponse(things ...obj) obj {
	return obj{"json": obj{"errors": []any{}, "data": obj{"things": things}}}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func newFetcher(c *mocks.MockRedditClient, batchSize int) *content.Fetcher {
	return content.NewFetcher(c, parser.NewRedditParser(), batchSize)
}

func postListing(items []*models.Thing, ids ...string) *models.Listing {
	return &models.Listing{
		Items:      items,
		ParentName: "t3_post",
		LinkID:     "t3_post",
		More:       &models.MoreChildren{ID: "m0", Name: "t1_m0", ParentID: "t3_post", Count: len(ids), Children: ids},
	}
}

func itemNames(l *models.Listing) []string {
	var out []string
	for _, item := range l.Items {
		out = append(out, item.Name)
	}
	return out
}

func TestFetchMore_NothingToDo(t *testing.T) {
	f := newFetcher(&mocks.MockRedditClient{}, 0)
	ctx := context.Background()

	l := postListing([]*models.Thing{{Name: "t1_a"}}, "b", "c")
	for _, n := range []int{0, -3} {
		got, err := f.FetchMore(ctx, l, n)
		require.NoError(t, err)
		assert.Same(t, l, got)
	}

	full := &models.Listing{Items: []*models.Thing{{Name: "t1_a"}}, ParentName: "t3_post"}
	got, err := f.FetchMore(ctx, full, 10)
	require.NoError(t, err)
	assert.Same(t, full, got)
}

func TestFetchMore_RebuildsTree(t *testing.T) {
	var requested []string
	c := &mocks.MockRedditClient{
		FetchMoreChildrenFunc: func(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error) {
			assert.Equal(t, "t3_post", linkID)
			requested = append(requested, childIDs...)
			return mustJSON(t, moreChildrenResponse(
				rawComment("c2", "t3_post"),
				rawComment("c2a", "t1_c2"),
				rawComment("c3", "t3_post"),
				rawMore("m3", "t1_c3", "c3a", "c3b"),
			)), nil
		},
	}

	orig := postListing([]*models.Thing{{Kind: models.KindComment, Name: "t1_c1"}}, "c2", "c3", "c4")
	got, err := newFetcher(c, 0).FetchMore(context.Background(), orig, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"c2", "c3"}, requested)
	assert.Equal(t, []string{"t1_c1", "t1_c2", "t1_c3"}, itemNames(got))
	assert.Equal(t, []string{"t1_c2a"}, itemNames(got.Items[1].Replies))
	require.NotNil(t, got.Items[2].Replies)
	assert.Equal(t, []string{"c3a", "c3b"}, got.Items[2].Replies.More.Children)

	require.NotNil(t, got.More)
	assert.Equal(t, []string{"c4"}, got.More.Children)
	assert.Equal(t, 1, got.More.Count)

	assert.Equal(t, []string{"t1_c1"}, itemNames(orig))
	assert.Equal(t, []string{"c2", "c3", "c4"}, orig.More.Children)
}

func TestFetchMore_Batches(t *testing.T) {
	var batches [][]string
	c := &mocks.MockRedditClient{
		FetchMoreChildrenFunc: func(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error) {
			batches = append(batches, append([]string(nil), childIDs...))
			var things []obj
			for _, id := range childIDs {
				things = append(things, rawComment(id, "t3_post"))
			}
			return mustJSON(t, moreChildrenResponse(things...)), nil
		},
	}

	orig := postListing(nil, "a", "b", "c", "d", "e")
	got, err := newFetcher(c, 2).FetchMore(context.Background(), orig, 10)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, batches)
	assert.Equal(t, []string{"t1_a", "t1_b", "t1_c", "t1_d", "t1_e"}, itemNames(got))
	assert.Nil(t, got.More)
	assert.False(t, got.HasMore())
}

func TestFetchMore_Errors(t *testing.T) {
	errDown := errors.New("connection reset")

	t.Run("transport", func(t *testing.T) {
		c := &mocks.MockRedditClient{
			FetchMoreChildrenFunc: func(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error) {
				return nil, errDown
			},
		}
		got, err := newFetcher(c, 0).FetchMore(context.Background(), postListing(nil, "a"), 1)
		assert.ErrorIs(t, err, errDown)
		assert.Contains(t, err.Error(), "t3_post")
		assert.Nil(t, got)
	})

	t.Run("api error", func(t *testing.T) {
		c := &mocks.MockRedditClient{
			FetchMoreChildrenFunc: func(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error) {
				return json.RawMessage(`{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`), nil
			},
		}
		_, err := newFetcher(c, 0).FetchMore(context.Background(), postListing(nil, "a"), 1)
		var apiErr *parser.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "RATELIMIT", apiErr.Code)
	})
}

func TestFetchMore_ContinueThread(t *testing.T) {
	page := []obj{
		listing(rawSubmission()),
		listing(rawComment("c1", "t3_post",
			rawComment("r1", "t1_c1"),
			rawComment("r2", "t1_c1"),
			rawComment("r3", "t1_c1"),
		)),
	}

	var fetched []string
	c := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, url string) (json.RawMessage, error) {
			fetched = append(fetched, url)
			return mustJSON(t, page), nil
		},
	}

	orig := &models.Listing{
		Items:      []*models.Thing{{Kind: models.KindComment, Name: "t1_r1"}},
		ParentName: "t1_c1",
		LinkID:     "t3_post",
		More:       &models.MoreChildren{ID: "_", Name: "t1__", ParentID: "t1_c1"},
	}

	got, err := newFetcher(c, 0).FetchMore(context.Background(), orig, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"comments:t3_post/t1_c1"}, fetched)
	assert.Equal(t, []string{"t1_r1", "t1_r2"}, itemNames(got))
	require.NotNil(t, got.More)
	assert.Equal(t, []string{"r3"}, got.More.Children)
	assert.Equal(t, "t1_c1", got.More.ParentID)
	assert.Len(t, orig.Items, 1)
}

func TestFetchThing(t *testing.T) {
	c := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, url string) (json.RawMessage, error) {
			assert.Equal(t, "info:t1_c1", url)
			fresh := rawComment("c1", "t3_post")
			fresh["data"].(obj)["score"] = 42
			return mustJSON(t, listing(fresh)), nil
		},
	}
	f := newFetcher(c, 0)

	t.Run("keeps loaded replies", func(t *testing.T) {
		replies := &models.Listing{Items: []*models.Thing{{Name: "t1_r1"}}, ParentName: "t1_c1"}
		stale := &models.Thing{Kind: models.KindComment, Name: "t1_c1", Score: 1, Replies: replies}

		got, err := f.FetchThing(context.Background(), stale)
		require.NoError(t, err)
		assert.NotSame(t, stale, got)
		assert.Equal(t, 42, got.Score)
		assert.Same(t, replies, got.Replies)
		assert.Equal(t, 1, stale.Score)
	})

	t.Run("bare thing gets an unloaded listing", func(t *testing.T) {
		got, err := f.FetchThing(context.Background(), &models.Thing{Kind: models.KindComment, Name: "t1_c1"})
		require.NoError(t, err)
		require.NotNil(t, got.Replies)
		assert.Equal(t, 0, got.Replies.Len())
		assert.True(t, got.Replies.HasMore())
		assert.True(t, got.Replies.More.IsContinueThread())
		assert.Equal(t, "t3_post", got.Replies.LinkID)
	})
}

func TestLookup_NotFound(t *testing.T) {
	c := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, url string) (json.RawMessage, error) {
			return mustJSON(t, listing()), nil
		},
	}
	_, err := newFetcher(c, 0).Lookup(context.Background(), "t1_gone")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestGetThing(t *testing.T) {
	page := mustJSON(t, []obj{
		listing(rawSubmission()),
		listing(rawComment("c1", "t3_post", rawComment("r1", "t1_c1"))),
	})
	info := mustJSON(t, listing(rawComment("c1", "t3_post")))

	c := &mocks.MockRedditClient{
		FetchJSONFunc: func(ctx context.Context, url string) (json.RawMessage, error) {
			switch {
			case strings.HasPrefix(url, "info:"):
				return info, nil
			case strings.HasPrefix(url, "comments:"):
				return page, nil
			}
			t.Fatalf("unexpected url %s", url)
			return nil, nil
		},
	}
	f := newFetcher(c, 0)
	ctx := context.Background()

	submission, err := f.GetThing(ctx, "t3_post")
	require.NoError(t, err)
	assert.Equal(t, models.KindSubmission, submission.Kind)
	assert.Equal(t, []string{"t1_c1"}, itemNames(submission.Comments))

	comment, err := f.GetThing(ctx, "t1_c1")
	require.NoError(t, err)
	assert.Equal(t, "t1_c1", comment.Name)
	assert.Equal(t, []string{"t1_r1"}, itemNames(comment.Replies))

	_, err = f.GetComment(ctx, "t3_post", "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = f.GetThing(ctx, "t5_subreddit")
	assert.Error(t, err)
}
