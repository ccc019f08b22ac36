package presenter

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-commons/internal/commons/contract"
	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

func basePresenter() *Definition {
	return Define("fake_presenter", nil, func(b *Builder) {
		b.RequiredOutputs("required_output")
		b.Outputs("optional_output")
	})
}

func TestOutputContract(t *testing.T) {
	base := basePresenter()
	tests := []struct {
		name string
		def  *Definition
		want []OutputSpec
	}{
		{
			name: "optional and required",
			def:  base,
			want: []OutputSpec{{"required_output", true}, {"optional_output", false}},
		},
		{
			name: "optional redefined to required",
			def: Define("child", base, func(b *Builder) {
				b.RequiredOutputs("optional_output")
			}),
			want: []OutputSpec{{"required_output", true}, {"optional_output", true}},
		},
		{
			name: "additional outputs",
			def: Define("child", base, func(b *Builder) {
				b.Outputs("a", "b")
				b.RequiredOutputs("c")
			}),
			want: []OutputSpec{{"required_output", true}, {"optional_output", false}, {"a", false}, {"b", false}, {"c", true}},
		},
		{
			name: "deep nesting",
			def: Define("grandchild", Define("child", base, nil), func(b *Builder) {
				b.Outputs("deep_child")
			}),
			want: []OutputSpec{{"required_output", true}, {"optional_output", false}, {"deep_child", false}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.def.OutputContract(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("output contract: want=%v got=%v", tt.want, got)
			}
		})
	}
}

func TestRedeclarationDoesNotLeakToParent(t *testing.T) {
	base := basePresenter()
	Define("child", base, func(b *Builder) { b.RequiredOutputs("optional_output") })
	if got := base.RequiredOutputs(); !reflect.DeepEqual(got, []string{"required_output"}) {
		t.Fatalf("parent required outputs changed: %v", got)
	}
}

func TestPresentWithoutArguments(t *testing.T) {
	def := Define("p", basePresenter(), func(b *Builder) {
		b.Call(func(ctx context.Context, p *Presenter) error {
			_ = p.Set("optional_output", "something")
			return p.Set("required_output", "must be set")
		})
	})
	out, err := def.Present(context.Background(), nil)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if out.Value("required_output") != "must be set" || out.Value("optional_output") != "something" {
		t.Fatalf("outputs: %v", out.Map())
	}
	if !reflect.DeepEqual(out.Names(), []string{"required_output", "optional_output"}) {
		t.Fatalf("names: %v", out.Names())
	}
}

func TestPresentWithPositionalArguments(t *testing.T) {
	def := Define("p", basePresenter(), func(b *Builder) {
		b.Init(func(p *Presenter, positional ...any) error {
			if len(positional) != 2 {
				return errors.New("want first and last name")
			}
			p.Locals["first"], p.Locals["last"] = positional[0], positional[1]
			return nil
		})
		b.Call(func(ctx context.Context, p *Presenter) error {
			return p.Set("required_output", p.Locals["first"].(string)+" "+p.Locals["last"].(string))
		})
	})
	out, err := def.Present(context.Background(), nil, "Bob", "Marley")
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if out.Value("required_output") != "Bob Marley" {
		t.Fatalf("required_output: got=%v", out.Value("required_output"))
	}
	if v, ok := out.Get("optional_output"); !ok || v != nil {
		t.Fatalf("optional_output should be present and nil: %v %v", v, ok)
	}

	if _, err := def.Present(context.Background(), nil, "Bob"); err == nil || !strings.Contains(err.Error(), "init") {
		t.Fatalf("init error should be returned: %v", err)
	}
}

func TestPresentWithOptionsContract(t *testing.T) {
	def := Define("p", basePresenter(), func(b *Builder) {
		b.Args(func(c *contract.Builder) {
			c.Attribute("critter1", "")
			c.Attribute("critter2", "")
			c.Attribute("page_size", contract.TypeInt, contract.Default(20))
		})
		b.Call(func(ctx context.Context, p *Presenter) error {
			if err := p.Set("optional_output", p.Opts().Int("page_size")); err != nil {
				return err
			}
			return p.Set("required_output", "The quick brow "+p.Opts().String("critter1")+" jumped over the lazy "+p.Opts().String("critter2"))
		})
	})
	out, err := def.Present(context.Background(), map[string]any{"critter1": "Fox", "critter2": "Dog"})
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if out.Value("required_output") != "The quick brow Fox jumped over the lazy Dog" {
		t.Fatalf("required_output: got=%v", out.Value("required_output"))
	}
	if n, ok := As[int64](out, "optional_output"); !ok || n != 20 {
		t.Fatalf("optional_output: want=20 got=%v", out.Value("optional_output"))
	}
}

func TestInputErrorsDoNotAbort(t *testing.T) {
	def := Define("p", nil, func(b *Builder) {
		b.Outputs("seen")
		b.Args(func(c *contract.Builder) {
			c.Attribute("name", contract.TypeString, contract.Required())
		})
		b.Call(func(ctx context.Context, p *Presenter) error {
			return p.Set("seen", strings.Join(p.InputErrors(), ","))
		})
	})
	out, err := def.Present(context.Background(), nil)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if out.Value("seen") != "name is required" {
		t.Fatalf("seen: got=%v", out.Value("seen"))
	}
}

func TestMissingRequiredOutput(t *testing.T) {
	def := Define("order_presenter", basePresenter(), func(b *Builder) {
		b.Call(func(ctx context.Context, p *Presenter) error {
			return p.Set("optional_output", "something")
		})
	})
	_, err := def.Present(context.Background(), nil)
	var missing *MissingOutputError
	if !errors.As(err, &missing) || missing.Output != "required_output" {
		t.Fatalf("want MissingOutputError for required_output got=%v", err)
	}
	if !errors.Is(err, commonerr.ErrMissingOutput) {
		t.Fatalf("errors.Is should match ErrMissingOutput")
	}
	if err.Error() != "order_presenter missing required output 'required_output'" {
		t.Fatalf("message: got=%q", err.Error())
	}
}

func TestTypedNilCountsAsUnset(t *testing.T) {
	def := Define("p", nil, func(b *Builder) {
		b.RequiredOutputs("list")
		b.Call(func(ctx context.Context, p *Presenter) error {
			var rows []string
			return p.Set("list", rows)
		})
	})
	if _, err := def.Present(context.Background(), nil); !errors.Is(err, commonerr.ErrMissingOutput) {
		t.Fatalf("nil slice should count as unset: %v", err)
	}
}

func TestMissingCall(t *testing.T) {
	if _, err := Define("p", basePresenter(), nil).Present(context.Background(), nil); !errors.Is(err, commonerr.ErrNotImplemented) {
		t.Fatalf("want ErrNotImplemented got=%v", err)
	}
}

func TestCallIsInherited(t *testing.T) {
	parent := Define("parent", nil, func(b *Builder) {
		b.Outputs("who")
		b.Call(func(ctx context.Context, p *Presenter) error { return p.Set("who", p.Name()) })
	})
	out, err := Define("child", parent, nil).Present(context.Background(), nil)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	if out.Value("who") != "child" {
		t.Fatalf("who: want=child got=%v", out.Value("who"))
	}
}

func TestUnknownOutput(t *testing.T) {
	def := Define("p", nil, func(b *Builder) {
		b.Call(func(ctx context.Context, p *Presenter) error { return p.Set("nope", 1) })
	})
	if _, err := def.Present(context.Background(), nil); !errors.Is(err, commonerr.ErrUnknownOutput) {
		t.Fatalf("want ErrUnknownOutput got=%v", err)
	}
}

func TestOutputIsACopy(t *testing.T) {
	def := Define("p", nil, func(b *Builder) {
		b.Outputs("x")
		b.Call(func(ctx context.Context, p *Presenter) error { return p.Set("x", 1) })
	})
	out, _ := def.Present(context.Background(), nil)
	m := out.Map()
	m["x"] = 2
	if out.Value("x") != 1 {
		t.Fatalf("output mutated through Map")
	}
}

func TestOutputMarshalYAMLKeepsOrder(t *testing.T) {
	def := Define("p", nil, func(b *Builder) {
		b.Outputs("zeta", "alpha")
		b.Call(func(ctx context.Context, p *Presenter) error {
			_ = p.Set("zeta", 1)
			return p.Set("alpha", "a")
		})
	})
	out, _ := def.Present(context.Background(), nil)
	raw, err := yaml.Marshal(out)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if got := string(raw); got != "zeta: 1\nalpha: a\n" {
		t.Fatalf("yaml: got=%q", got)
	}
}
