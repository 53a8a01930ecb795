package mocks

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

type MockRedditClient struct {
	FetchJSONFunc         func(ctx context.Context, url string) (json.RawMessage, error)
	FetchMoreChildrenFunc func(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error)
	GetInfoURLFunc        func(names ...string) string
	GetCommentPageURLFunc func(linkID, commentID string) string
	PostFormFunc          func(ctx context.Context, path string, form url.Values) (json.RawMessage, error)
}

func (m *MockRedditClient) FetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	return m.FetchJSONFunc(ctx, url)
}

func (m *MockRedditClient) FetchMoreChildren(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error) {
	return m.FetchMoreChildrenFunc(ctx, linkID, childIDs)
}

func (m *MockRedditClient) GetInfoURL(names ...string) string {
	if m.GetInfoURLFunc == nil {
		return "info:" + joinNames(names)
	}
	return m.GetInfoURLFunc(names...)
}

func (m *MockRedditClient) GetCommentPageURL(linkID, commentID string) string {
	if m.GetCommentPageURLFunc == nil {
		return "comments:" + linkID + "/" + commentID
	}
	return m.GetCommentPageURLFunc(linkID, commentID)
}

func (m *MockRedditClient) PostForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	return m.PostFormFunc(ctx, path, form)
}

func joinNames(names []string) string {
	return strings.Join(names, ",")
}
