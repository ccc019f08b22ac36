package contract

import (
	"errors"
	"testing"

	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

func TestParseYAML(t *testing.T) {
	c, err := ParseYAML([]byte(`
attributes:
  - name: search
    type: string
  - name: order
    type: symbol
    default: asc
  - name: page_size
    type: int
    default: 20
  - name: owner
    required: true
`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	attrs := c.Attributes()
	if len(attrs) != 4 {
		t.Fatalf("attributes: want=4 got=%d", len(attrs))
	}
	if attrs[1].Type != TypeSymbol || !attrs[1].Default.Equal(Sym("asc")) {
		t.Fatalf("order: got=%+v", attrs[1])
	}
	if !attrs[2].Default.Equal(Int(20)) {
		t.Fatalf("page_size default: got=%v (%s)", attrs[2].Default, attrs[2].Default.Kind())
	}
	if attrs[3].Type != TypeObject || len(attrs[3].Validations) != 1 || attrs[3].Validations[0] != RuleRequired {
		t.Fatalf("owner: got=%+v", attrs[3])
	}

	in := NewInput(map[string]any{"page_size": "5"})
	ev := c.Apply(in)
	if ev.Valid() || ev.Errors()[0] != "owner is required" {
		t.Fatalf("errors: %v", ev.Errors())
	}
	if in.Int("page_size") != 5 || in.Symbol("order") != "asc" {
		t.Fatalf("values: %v", in.Map())
	}
}

func TestParseYAMLStrictPresence(t *testing.T) {
	c := MustParseYAML([]byte("presence: strict\nattributes:\n  - name: flag\n    required: true\n"))
	if !c.Apply(NewInput(map[string]any{"flag": false})).Valid() {
		t.Fatalf("strict presence should accept false")
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown presence", doc: "presence: loose\n"},
		{name: "missing name", doc: "attributes:\n  - type: int\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			if !errors.Is(err, commonerr.ErrInvalidArgument) {
				t.Fatalf("want ErrInvalidArgument got=%v", err)
			}
		})
	}
	if _, err := ParseYAML([]byte("attributes: [")); err == nil {
		t.Fatalf("malformed yaml should fail")
	}
}
