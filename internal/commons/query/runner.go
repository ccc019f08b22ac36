package query

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
)

// Runner is the untyped view of a Definition, so queries with different
// argument types can share one registry.
type Runner interface {
	Name() string
	QueryAsScope(ctx context.Context, scope *gorm.DB, opts map[string]any) (*gorm.DB, error)
}

var _ Runner = (*Definition[args.Arguments])(nil)
