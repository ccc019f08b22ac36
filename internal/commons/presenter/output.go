package presenter

import (
	"maps"

	"gopkg.in/yaml.v3"
)

// Output is the read-only result of Present. Names keep declaration order.
type Output struct {
	names  []string
	values map[string]any
}

func newOutput(specs []OutputSpec, values map[string]any) *Output {
	o := &Output{names: make([]string, 0, len(specs)), values: make(map[string]any, len(specs))}
	for _, s := range specs {
		o.names = append(o.names, s.Name)
		o.values[s.Name] = values[s.Name]
	}
	return o
}

func (o *Output) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Value returns the output or nil.
func (o *Output) Value(name string) any { return o.values[name] }

func (o *Output) Names() []string { return append([]string(nil), o.names...) }

func (o *Output) Map() map[string]any { return maps.Clone(o.values) }

func (o *Output) Len() int { return len(o.names) }

// MarshalYAML renders the outputs as a mapping in declaration order.
func (o *Output) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, n := range o.names {
		var val yaml.Node
		if err := val.Encode(o.values[n]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: n}, &val)
	}
	return node, nil
}

// As returns the output converted to T.
func As[T any](o *Output, name string) (T, bool) {
	v, ok := o.values[name].(T)
	return v, ok
}
