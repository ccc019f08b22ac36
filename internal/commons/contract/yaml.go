package contract

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

type yamlContract struct {
	Presence   string          `yaml:"presence"`
	Attributes []yamlAttribute `yaml:"attributes"`
}

type yamlAttribute struct {
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	Default     yaml.Node `yaml:"default"`
	Required    bool      `yaml:"required"`
	Validations []string  `yaml:"validations"`
}

// ParseYAML declares a contract from a document of the form
//
//	presence: truthy        # or strict
//	attributes:
//	  - name: count
//	    type: int
//	    default: 0
//	  - name: name
//	    required: true
func ParseYAML(data []byte) (*Contract, error) {
	var doc yamlContract
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("contract yaml: %w", err)
	}

	var presence Presence
	switch strings.ToLower(strings.TrimSpace(doc.Presence)) {
	case "", "truthy":
		presence = Truthy
	case "strict":
		presence = Strict
	default:
		return nil, commonerr.InvalidArgument(fmt.Sprintf("contract yaml: unknown presence %q", doc.Presence))
	}

	type decl struct {
		name string
		typ  Type
		opts []Option
	}
	decls := make([]decl, 0, len(doc.Attributes))
	for i, a := range doc.Attributes {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, commonerr.InvalidArgument(fmt.Sprintf("contract yaml: attribute %d has no name", i))
		}
		var opts []Option
		if !a.Default.IsZero() {
			var def any
			if err := a.Default.Decode(&def); err != nil {
				return nil, fmt.Errorf("contract yaml: default for %s: %w", name, err)
			}
			if s, ok := def.(string); ok && Type(strings.TrimSpace(a.Type)) == TypeSymbol {
				def = Symbol(s)
			}
			opts = append(opts, Default(def))
		}
		if len(a.Validations) > 0 {
			rules := make([]Rule, 0, len(a.Validations))
			for _, r := range a.Validations {
				rules = append(rules, Rule(strings.TrimSpace(r)))
			}
			opts = append(opts, Validations(rules...))
		}
		if a.Required {
			opts = append(opts, Required())
		}
		decls = append(decls, decl{name: name, typ: Type(strings.TrimSpace(a.Type)), opts: opts})
	}

	return New(func(b *Builder) {
		b.Presence(presence)
		for _, d := range decls {
			b.Attribute(d.name, d.typ, d.opts...)
		}
	}), nil
}

// MustParseYAML is ParseYAML for embedded documents; it panics on error.
func MustParseYAML(data []byte) *Contract {
	c, err := ParseYAML(data)
	if err != nil {
		panic(err)
	}
	return c
}
