package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
)

// Outcome is the untyped view of a finished command.
type Outcome interface {
	Name() string
	ID() uuid.UUID
	Success() bool
	ErrorMessages(scope Scope) []string
	Result() any
}

// Runner is the untyped view of a Definition, so commands with different
// argument and output types can share one registry.
type Runner interface {
	Name() string
	Execute(ctx context.Context, opts map[string]any) (Outcome, error)
}

var _ Runner = (*Definition[args.Arguments, any])(nil)
