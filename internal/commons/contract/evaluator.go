package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CoercionError records an attribute whose value could not be coerced to its
// declared type. It is informational and never makes an evaluation invalid.
type CoercionError struct {
	Attribute string
	Type      Type
	Raw       string
	Err       error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s: cannot coerce %q to %s: %v", e.Attribute, e.Raw, e.Type, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

var errNotInteger = errors.New("not an integer")

// Evaluator applies one Contract to one Input. It is created per Apply and is
// not meant to be reused across inputs.
type Evaluator struct {
	contract  *Contract
	errors    []string
	coercions []*CoercionError
}

func NewEvaluator(c *Contract) *Evaluator {
	return &Evaluator{contract: c, errors: []string{}}
}

// Evaluate runs coerce, default and validate for every attribute in
// declaration order, writing results back into in.
func (e *Evaluator) Evaluate(in *Input) {
	e.errors = []string{}
	e.coercions = nil
	if in == nil {
		in = NewInput(nil)
	}
	for _, attr := range e.contract.attributes {
		e.coerce(attr, in)
		e.applyDefault(attr, in)
		e.validate(attr, in)
	}
}

func (e *Evaluator) Valid() bool {
	return len(e.errors) == 0
}

func (e *Evaluator) Errors() []string {
	return append([]string(nil), e.errors...)
}

func (e *Evaluator) CoercionErrors() []*CoercionError {
	return append([]*CoercionError(nil), e.coercions...)
}

func (e *Evaluator) Contract() *Contract { return e.contract }

func (e *Evaluator) coerce(attr Attribute, in *Input) {
	current := in.Get(attr.Name)
	if !e.contract.Present(current) {
		return
	}
	var (
		next Value
		err  error
	)
	switch attr.Type {
	case TypeInt:
		next, err = coerceInt(current)
	case TypeSymbol:
		next = Sym(current.String())
	default:
		return
	}
	if err != nil {
		e.coercions = append(e.coercions, &CoercionError{
			Attribute: attr.Name,
			Type:      attr.Type,
			Raw:       current.String(),
			Err:       err,
		})
		next = invalid(current, err)
	}
	in.Set(attr.Name, next)
}

func (e *Evaluator) applyDefault(attr Attribute, in *Input) {
	if !attr.HasDefault || !e.contract.Present(attr.Default) {
		return
	}
	if e.contract.Present(in.Get(attr.Name)) {
		return
	}
	in.Set(attr.Name, attr.Default)
}

func (e *Evaluator) validate(attr Attribute, in *Input) {
	for _, rule := range attr.Validations {
		switch rule {
		case RuleRequired:
			if !e.contract.Present(in.Get(attr.Name)) {
				e.errors = append(e.errors, attr.Name+" is required")
			}
		}
	}
}

func coerceInt(v Value) (Value, error) {
	switch v.Kind() {
	case KindInt:
		return v, nil
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 0, 64)
		if err != nil {
			return Value{}, err
		}
		return Int(n), nil
	case KindObject:
		switch f := v.obj.(type) {
		case float64:
			return Int(int64(f)), nil
		case float32:
			return Int(int64(f)), nil
		}
	}
	return Value{}, errNotInteger
}
