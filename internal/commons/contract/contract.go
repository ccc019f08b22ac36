// Package contract declares typed attributes for an opts payload and applies
// coercion, defaults and required-field validation to it.
//
// A Contract holds declarations only. Each Apply creates a fresh Evaluator that
// mutates the given Input in place and records validation errors:
//
//	c := contract.New(func(b *contract.Builder) {
//		b.Attribute("name", contract.TypeString, contract.Required())
//		b.Attribute("page_size", contract.TypeInt, contract.Default(20))
//	})
//	ev := c.Apply(contract.NewInput(opts))
//	ev.Valid()
package contract

import (
	"maps"
	"slices"
)

// Type tags the semantic type of an attribute.
type Type string

const (
	TypeObject Type = "object"
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeSymbol Type = "symbol"
)

// Rule tags a validation rule.
type Rule string

const RuleRequired Rule = "required"

// Attribute is one declared input field. It does not change once added.
type Attribute struct {
	Name        string
	Type        Type
	Default     Value
	HasDefault  bool
	Validations []Rule
}

// Option configures an Attribute at declaration time.
type Option func(*attributeOptions)

type attributeOptions struct {
	def         Value
	hasDefault  bool
	required    bool
	validations []Rule
}

// Default sets the value written when the attribute is missing. A default the
// contract's presence policy treats as missing is never written.
func Default(v any) Option {
	return func(o *attributeOptions) {
		o.def = ValueOf(v)
		o.hasDefault = true
	}
}

// Required appends the required rule after any explicit validations.
func Required() Option {
	return func(o *attributeOptions) { o.required = true }
}

// Validations appends explicit rule tags.
func Validations(rules ...Rule) Option {
	return func(o *attributeOptions) { o.validations = append(o.validations, rules...) }
}

// Builder collects declarations for New.
type Builder struct {
	attributes []Attribute
	presence   Presence
}

// Attribute appends a declaration. An empty type means TypeObject. Duplicate
// names are kept; each is evaluated in turn.
func (b *Builder) Attribute(name string, typ Type, opts ...Option) {
	if typ == "" {
		typ = TypeObject
	}
	var o attributeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	rules := append([]Rule(nil), o.validations...)
	if o.required {
		rules = append(rules, RuleRequired)
	}
	if rules == nil {
		rules = []Rule{}
	}
	b.attributes = append(b.attributes, Attribute{
		Name:        name,
		Type:        typ,
		Default:     o.def,
		HasDefault:  o.hasDefault,
		Validations: rules,
	})
}

// Presence selects how missing values are detected. Truthy is the default.
func (b *Builder) Presence(p Presence) {
	b.presence = p
}

// Contract is an ordered, read-only set of attribute declarations.
type Contract struct {
	attributes []Attribute
	presence   Presence
}

// New runs configure against a fresh Builder and freezes the result. A nil
// configure yields an empty contract.
func New(configure func(b *Builder)) *Contract {
	b := &Builder{}
	if configure != nil {
		configure(b)
	}
	p := b.presence
	if p == nil {
		p = Truthy
	}
	return &Contract{attributes: b.attributes, presence: p}
}

// Empty returns a contract without attributes.
func Empty() *Contract { return New(nil) }

// Attributes returns the declarations in declaration order.
func (c *Contract) Attributes() []Attribute {
	if c == nil {
		return nil
	}
	out := make([]Attribute, len(c.attributes))
	for i, a := range c.attributes {
		a.Validations = slices.Clone(a.Validations)
		out[i] = a
	}
	return out
}

// Present reports whether v counts as provided under this contract's policy.
func (c *Contract) Present(v Value) bool {
	if c == nil || c.presence == nil {
		return Truthy(v)
	}
	return c.presence(v)
}

// Apply evaluates in against the contract and returns the evaluator holding
// the outcome.
func (c *Contract) Apply(in *Input) *Evaluator {
	ev := NewEvaluator(c)
	ev.Evaluate(in)
	return ev
}

// Bind builds an Input from opts and applies the contract to it.
func (c *Contract) Bind(opts map[string]any) (*Bound, error) {
	in := NewInput(opts)
	return &Bound{Input: in, Evaluator: c.Apply(in)}, nil
}

// Bound is an evaluated Input, usable as the argument payload of commands,
// presenters and queries.
type Bound struct {
	Input     *Input
	Evaluator *Evaluator
}

func (b *Bound) Valid() bool {
	return b != nil && b.Evaluator.Valid()
}

func (b *Bound) Messages() []string {
	if b == nil {
		return nil
	}
	return b.Evaluator.Errors()
}

// Get is shorthand for b.Input.Get.
func (b *Bound) Get(name string) Value {
	if b == nil {
		return Absent()
	}
	return b.Input.Get(name)
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
