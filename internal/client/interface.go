// internal/client/interface.go
package client

import (
	"context"
	"encoding/json"
	"net/url"
)

// Fetcher performs authenticated GET requests
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) (json.RawMessage, error)
	FetchMoreChildren(ctx context.Context, linkID string, childIDs []string) (json.RawMessage, error)
	GetInfoURL(names ...string) string
	GetCommentPageURL(linkID, commentID string) string
}

// Poster performs authenticated form POSTs against API paths
type Poster interface {
	PostForm(ctx context.Context, path string, form url.Values) (json.RawMessage, error)
}

type RedditClientInterface interface {
	Fetcher
	Poster
}
