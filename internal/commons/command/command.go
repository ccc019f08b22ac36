// Package command wraps a single action with validated arguments, its own
// error collection and a success flag.
//
// A Definition is declared once; every Run constructs a fresh Command, binds
// its arguments and invokes the call. The call decides what to do with invalid
// arguments:
//
//	greet := command.Define("greet", schema, func(ctx context.Context, c *command.Command[*args.Args[greetArgs], string]) error {
//		if !c.Args().Valid() {
//			return nil
//		}
//		c.Output = "Hello " + c.Args().Values.Name
//		return nil
//	})
//	c, err := greet.Run(ctx, map[string]any{"name": "David"})
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurobridge-commons/internal/commons/args"
	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

// Scope selects which messages ErrorMessages returns.
type Scope int

const (
	ScopeCommand Scope = iota
	ScopeArgs
	ScopeAll
)

// CallFunc is the body of a command.
type CallFunc[A args.Arguments, O any] func(ctx context.Context, c *Command[A, O]) error

type Option func(*options)

type options struct {
	log *logger.Logger
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// Definition is a named command type.
type Definition[A args.Arguments, O any] struct {
	name   string
	binder args.Binder[A]
	call   CallFunc[A, O]
	log    *logger.Logger
	tracer trace.Tracer
}

// Define declares a command. A nil binder means an empty contract when A is
// *contract.Bound. A nil call makes every run fail with ErrNotImplemented.
func Define[A args.Arguments, O any](name string, binder args.Binder[A], call CallFunc[A, O], opts ...Option) *Definition[A, O] {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if binder == nil {
		if b, ok := any(contract.Empty()).(args.Binder[A]); ok {
			binder = b
		}
	}
	return &Definition[A, O]{
		name:   strings.TrimSpace(name),
		binder: binder,
		call:   call,
		log:    logger.OrNop(o.log).With("command", strings.TrimSpace(name)),
		tracer: otel.Tracer("neurobridge-commons/command"),
	}
}

func (d *Definition[A, O]) Name() string { return d.name }

// New constructs a command with bound arguments without running it.
func (d *Definition[A, O]) New(opts map[string]any) (*Command[A, O], error) {
	if d.binder == nil {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("command %s: no args binder", d.name))
	}
	a, err := d.binder.Bind(opts)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", d.name, err)
	}
	return &Command[A, O]{def: d, id: uuid.New(), args: a, errors: args.NewErrors()}, nil
}

// Run constructs a command and runs AroundCall. Validation failures are never
// returned as errors; inspect Success and ErrorMessages instead.
func (d *Definition[A, O]) Run(ctx context.Context, opts map[string]any) (*Command[A, O], error) {
	c, err := d.New(opts)
	if err != nil {
		return nil, err
	}
	if err := c.AroundCall(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// Execute implements Runner.
func (d *Definition[A, O]) Execute(ctx context.Context, opts map[string]any) (Outcome, error) {
	c, err := d.Run(ctx, opts)
	if c == nil {
		return nil, err
	}
	return c, err
}

// Command is one run of a Definition.
type Command[A args.Arguments, O any] struct {
	// Output is set by the call.
	Output O

	def       *Definition[A, O]
	id        uuid.UUID
	args      A
	errors    *args.Errors
	success   *bool
	argsValid bool
}

// AroundCall validates the arguments, invokes the call and re-evaluates
// validity. The call runs even when the arguments are invalid.
func (c *Command[A, O]) AroundCall(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d := c.def
	ctx, span := d.tracer.Start(ctx, "command."+d.name,
		trace.WithAttributes(
			attribute.String("command.name", d.name),
			attribute.String("command.run_id", c.id.String()),
		),
	)
	defer span.End()

	c.argsValid = c.args.Valid()
	if d.call == nil {
		err := commonerr.NotImplemented(fmt.Sprintf("command %s: implement the call", d.name))
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := d.call(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Warn("command call failed", "run_id", c.id.String(), "error", err)
		return fmt.Errorf("command %s: %w", d.name, err)
	}
	c.argsValid = c.args.Valid()

	ok := c.Success()
	span.SetAttributes(attribute.Bool("command.success", ok))
	d.log.Debug("command finished",
		"run_id", c.id.String(),
		"success", ok,
		"errors", c.errors.Len(),
		"args_errors", len(c.args.Messages()),
	)
	return nil
}

func (c *Command[A, O]) Name() string  { return c.def.name }
func (c *Command[A, O]) ID() uuid.UUID { return c.id }
func (c *Command[A, O]) Args() A       { return c.args }

// Errors holds the command's own errors, separate from argument errors.
func (c *Command[A, O]) Errors() *args.Errors { return c.errors }

func (c *Command[A, O]) AddError(attr, message string) {
	c.errors.Add(attr, message)
}

// SetSuccess records an explicit outcome. Command or argument errors still
// make the run a failure.
func (c *Command[A, O]) SetSuccess(ok bool) {
	c.success = &ok
}

// Valid reports whether the command recorded no errors of its own.
func (c *Command[A, O]) Valid() bool { return c.errors.Empty() }

func (c *Command[A, O]) Success() bool {
	ok := c.Valid() && c.argsValid
	if c.success != nil {
		return ok && *c.success
	}
	return ok
}

func (c *Command[A, O]) Failure() bool { return !c.Success() }

// ErrorMessages returns argument messages, then command messages, filtered by
// scope.
func (c *Command[A, O]) ErrorMessages(scope Scope) []string {
	out := []string{}
	if scope == ScopeArgs || scope == ScopeAll {
		out = append(out, c.args.Messages()...)
	}
	if scope == ScopeCommand || scope == ScopeAll {
		out = append(out, c.errors.FullMessages()...)
	}
	return out
}

// Result returns Output as an untyped value.
func (c *Command[A, O]) Result() any { return c.Output }
