// internal/parser/interface.go
package parser

import (
	"context"
	"encoding/json"

	"github.com/lionls/snoowrap/internal/models"
)

// Parser turns Reddit API responses into things
type Parser interface {
	ParseInfo(ctx context.Context, data json.RawMessage) (*models.Thing, error)
	ParseCommentPage(ctx context.Context, data json.RawMessage) (*models.Thing, error)
	ParseMoreChildren(ctx context.Context, data json.RawMessage) ([]*models.Thing, []*models.MoreChildren, error)
	ParseThingResponse(ctx context.Context, data json.RawMessage) (*models.Thing, error)
	CheckErrors(data json.RawMessage) error
}
