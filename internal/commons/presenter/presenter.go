// Package presenter shapes data for a view. A presenter declares named output
// slots, runs a call that fills them and fails when a required slot is left
// unset.
//
// Definitions form a hierarchy: a child inherits its parent's outputs,
// initializer and call, and may override any of them.
package presenter

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
	"github.com/yungbote/neurobridge-commons/internal/platform/logger"
)

// OutputSpec declares one output slot.
type OutputSpec struct {
	Name     string
	Required bool
}

// InitFunc receives the positional arguments of Present.
type InitFunc func(p *Presenter, positional ...any) error

// CallFunc fills the outputs.
type CallFunc func(ctx context.Context, p *Presenter) error

// Builder collects the declarations of one Definition.
type Builder struct {
	outputs []OutputSpec
	input   *contract.Contract
	init    InitFunc
	call    CallFunc
	log     *logger.Logger
}

// Outputs declares optional outputs.
func (b *Builder) Outputs(names ...string) { b.declare(false, names) }

// RequiredOutputs declares outputs that must be non-nil after the call.
func (b *Builder) RequiredOutputs(names ...string) { b.declare(true, names) }

func (b *Builder) declare(required bool, names []string) {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			b.outputs = append(b.outputs, OutputSpec{Name: n, Required: required})
		}
	}
}

// Contract sets the keyword-input contract. It is not inherited.
func (b *Builder) Contract(c *contract.Contract) { b.input = c }

// Args declares the keyword-input contract inline.
func (b *Builder) Args(configure func(cb *contract.Builder)) { b.input = contract.New(configure) }

func (b *Builder) Init(fn InitFunc)          { b.init = fn }
func (b *Builder) Call(fn CallFunc)          { b.call = fn }
func (b *Builder) Logger(log *logger.Logger) { b.log = log }

// Definition is a named presenter type.
type Definition struct {
	name    string
	parent  *Definition
	own     []OutputSpec
	outputs []OutputSpec
	input   *contract.Contract
	init    InitFunc
	call    CallFunc
	log     *logger.Logger
	tracer  trace.Tracer
}

// Define declares a presenter. parent may be nil.
func Define(name string, parent *Definition, configure func(b *Builder)) *Definition {
	b := &Builder{}
	if configure != nil {
		configure(b)
	}
	d := &Definition{
		name:   strings.TrimSpace(name),
		parent: parent,
		own:    b.outputs,
		input:  b.input,
		init:   b.init,
		call:   b.call,
		log:    b.log,
		tracer: otel.Tracer("neurobridge-commons/presenter"),
	}
	if parent != nil {
		if d.init == nil {
			d.init = parent.init
		}
		if d.call == nil {
			d.call = parent.call
		}
		if d.log == nil {
			d.log = parent.log
		}
	}
	d.log = logger.OrNop(d.log).With("presenter", d.name)
	d.outputs = d.mergeOutputs()
	return d
}

func (d *Definition) Name() string              { return d.name }
func (d *Definition) Parent() *Definition       { return d.parent }
func (d *Definition) Input() *contract.Contract { return d.input }

// OutputContract returns the outputs of the whole hierarchy, oldest ancestor
// first.
func (d *Definition) OutputContract() []OutputSpec {
	return append([]OutputSpec(nil), d.outputs...)
}

// RequiredOutputs returns the names that must be set after the call.
func (d *Definition) RequiredOutputs() []string {
	var out []string
	for _, o := range d.outputs {
		if o.Required {
			out = append(out, o.Name)
		}
	}
	return out
}

func (d *Definition) mergeOutputs() []OutputSpec {
	var chain []*Definition
	for cur := d; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	var merged []OutputSpec
	pos := map[string]int{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, o := range chain[i].own {
			if at, ok := pos[o.Name]; ok {
				merged[at].Required = o.Required
				continue
			}
			pos[o.Name] = len(merged)
			merged = append(merged, o)
		}
	}
	return merged
}

func (d *Definition) declared(name string) bool {
	for _, o := range d.outputs {
		if o.Name == name {
			return true
		}
	}
	return false
}

// Present constructs a presenter, applies the input contract, runs the call
// and checks the required outputs.
func (d *Definition) Present(ctx context.Context, opts map[string]any, positional ...any) (*Output, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := d.tracer.Start(ctx, "presenter."+d.name,
		trace.WithAttributes(attribute.String("presenter.name", d.name)),
	)
	defer span.End()

	out, err := d.present(ctx, opts, positional)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.log.Warn("present failed", "error", err)
		return nil, err
	}
	d.log.Debug("presented", "outputs", out.Len())
	return out, nil
}

func (d *Definition) present(ctx context.Context, opts map[string]any, positional []any) (*Output, error) {
	p := d.New(opts, positional...)
	if d.init != nil {
		if err := d.init(p, positional...); err != nil {
			return nil, fmt.Errorf("presenter %s: init: %w", d.name, err)
		}
	}
	if d.input != nil {
		ev := d.input.Apply(p.opts)
		p.inputErrors = ev.Errors()
		p.coercions = ev.CoercionErrors()
	}
	if d.call == nil {
		return nil, commonerr.NotImplemented(fmt.Sprintf("presenter %s: implement the call", d.name))
	}
	if err := d.call(ctx, p); err != nil {
		return nil, fmt.Errorf("presenter %s: %w", d.name, err)
	}
	for _, name := range d.RequiredOutputs() {
		if isNil(p.outputs[name]) {
			return nil, &MissingOutputError{Presenter: d.name, Output: name}
		}
	}
	return newOutput(d.outputs, p.outputs), nil
}

// New constructs a presenter without running it. Every output starts unset.
func (d *Definition) New(opts map[string]any, positional ...any) *Presenter {
	outputs := make(map[string]any, len(d.outputs))
	for _, o := range d.outputs {
		outputs[o.Name] = nil
	}
	return &Presenter{
		def:        d,
		opts:       contract.NewInput(opts),
		positional: append([]any(nil), positional...),
		outputs:    outputs,
		Locals:     map[string]any{},
	}
}

// Presenter is one run of a Definition.
type Presenter struct {
	// Locals holds state set up by the initializer for the call.
	Locals map[string]any

	def         *Definition
	opts        *contract.Input
	positional  []any
	outputs     map[string]any
	inputErrors []string
	coercions   []*contract.CoercionError
}

func (p *Presenter) Name() string { return p.def.name }

// Opts is the coerced keyword input.
func (p *Presenter) Opts() *contract.Input { return p.opts }

func (p *Presenter) Positional() []any { return append([]any(nil), p.positional...) }

// InputErrors returns the input contract's messages. They do not stop the call.
func (p *Presenter) InputErrors() []string { return append([]string(nil), p.inputErrors...) }

func (p *Presenter) InputValid() bool { return len(p.inputErrors) == 0 }

func (p *Presenter) CoercionErrors() []*contract.CoercionError {
	return append([]*contract.CoercionError(nil), p.coercions...)
}

// Set assigns a declared output.
func (p *Presenter) Set(name string, v any) error {
	if !p.def.declared(name) {
		return commonerr.Tag(commonerr.ErrUnknownOutput, fmt.Errorf("presenter %s: output %q is not declared", p.def.name, name))
	}
	p.outputs[name] = v
	return nil
}

// Get returns the current value of an output.
func (p *Presenter) Get(name string) any { return p.outputs[name] }

// MissingOutputError reports a required output left unset after the call.
type MissingOutputError struct {
	Presenter string
	Output    string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("%s missing required output '%s'", e.Presenter, e.Output)
}

func (e *MissingOutputError) Unwrap() error { return commonerr.ErrMissingOutput }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
