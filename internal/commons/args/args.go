// Package args declares typed argument structs for commands, presenters and
// queries. Values are coerced from a keyword map with mapstructure and
// validated with go-playground/validator struct tags plus record-level rules.
//
//	type createArgs struct {
//		Number string `mapstructure:"number" validate:"required,min=3"`
//		Status string `mapstructure:"status" validate:"oneof=pending wip"`
//	}
//	schema := args.MustDefine[createArgs]("create_order", func(b *args.Builder[createArgs]) {
//		b.Default("status", "pending")
//	})
//	a, err := schema.Bind(map[string]any{"number": "A-100"})
package args

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/go-viper/mapstructure/v2"
	"gorm.io/datatypes"

	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

type field struct {
	key    string
	label  string
	goName string
	index  []int
}

type defaultValue struct {
	key   string
	value any
}

type customRule struct {
	tag     string
	fn      validator.Func
	message string
}

// Builder collects the declarations of one Schema.
type Builder[T any] struct {
	defaults []defaultValue
	record   []func(*T, *Errors)
	rules    []customRule
}

// Default sets the value applied before the provided keys.
func (b *Builder[T]) Default(field string, value any) {
	b.defaults = append(b.defaults, defaultValue{key: field, value: value})
}

// ValidatesWith adds a record-level rule. It runs after the struct tags.
func (b *Builder[T]) ValidatesWith(fn func(v *T, errs *Errors)) {
	if fn != nil {
		b.record = append(b.record, fn)
	}
}

// RegisterValidation adds a custom struct tag. message may reference the
// label as {0} and the tag parameter as {1}; without {0} the label is
// prepended.
func (b *Builder[T]) RegisterValidation(tag string, fn validator.Func, message string) {
	b.rules = append(b.rules, customRule{tag: strings.TrimSpace(tag), fn: fn, message: message})
}

// Schema is a named Args type. It is immutable once defined and safe for
// concurrent use.
type Schema[T any] struct {
	name     string
	fields   []field
	byKey    map[string]int
	byGoName map[string]int
	defaults []defaultValue
	record   []func(*T, *Errors)
	validate *validator.Validate
	trans    ut.Translator
}

// Define builds a Schema for struct type T.
func Define[T any](name string, configure func(b *Builder[T])) (*Schema[T], error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, commonerr.InvalidArgument("args: name is required")
	}
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, commonerr.InvalidArgument(fmt.Sprintf("args %s: %s is not a struct", name, typ))
	}

	b := &Builder[T]{}
	if configure != nil {
		configure(b)
	}

	s := &Schema[T]{
		name:     name,
		byKey:    map[string]int{},
		byGoName: map[string]int{},
		record:   b.record,
	}
	s.collectFields(typ)
	if err := s.initValidator(b.rules); err != nil {
		return nil, fmt.Errorf("args %s: %w", name, err)
	}

	var probe T
	for _, d := range b.defaults {
		f, ok := s.lookup(d.key)
		if !ok {
			return nil, commonerr.Tag(commonerr.ErrUnknownAttribute, fmt.Errorf("args %s: default for unknown attribute %q", name, d.key))
		}
		if err := s.decode(&probe, f, d.value); err != nil {
			return nil, commonerr.Tag(commonerr.ErrInvalidArgument, fmt.Errorf("args %s: default for %s: %w", name, f.key, err))
		}
		s.defaults = append(s.defaults, defaultValue{key: f.key, value: d.value})
	}
	return s, nil
}

// MustDefine is Define for package-level schemas; it panics on error.
func MustDefine[T any](name string, configure func(b *Builder[T])) *Schema[T] {
	s, err := Define(name, configure)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[T]) Name() string { return s.name }

// Keys returns the accepted attribute keys in field order.
func (s *Schema[T]) Keys() []string {
	out := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, f.key)
	}
	return out
}

// New applies defaults, then opts, and validates the result once. Only an
// unknown key is returned as an error.
func (s *Schema[T]) New(opts map[string]any) (*Args[T], error) {
	a := &Args[T]{schema: s, errors: s.newErrors(), failed: map[string]bool{}}
	for _, d := range s.defaults {
		f, _ := s.lookup(d.key)
		_ = s.decode(&a.Values, f, d.value)
	}
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		f, ok := s.lookup(k)
		if !ok {
			return nil, commonerr.Tag(commonerr.ErrUnknownAttribute, fmt.Errorf("args %s: unknown attribute %q", s.name, k))
		}
		delete(a.failed, f.key)
		if err := s.decode(&a.Values, f, opts[k]); err != nil {
			a.failed[f.key] = true
		}
	}
	a.Valid()
	return a, nil
}

// Bind implements Binder.
func (s *Schema[T]) Bind(opts map[string]any) (*Args[T], error) {
	return s.New(opts)
}

// Create is shorthand for schema.New.
func Create[T any](schema *Schema[T], opts map[string]any) (*Args[T], error) {
	if schema == nil {
		return nil, commonerr.InvalidArgument("args: schema is required")
	}
	return schema.New(opts)
}

func (s *Schema[T]) newErrors() *Errors {
	return &Errors{label: func(attribute string) string {
		if f, ok := s.lookup(attribute); ok {
			return f.label
		}
		return Humanize(attribute)
	}}
}

func (s *Schema[T]) collectFields(typ reflect.Type) {
	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() || sf.Anonymous || crossesPointer(typ, sf.Index) {
			continue
		}
		key := strings.Split(sf.Tag.Get("mapstructure"), ",")[0]
		if key == "-" {
			continue
		}
		if key == "" {
			key = sf.Name
		}
		if _, dup := s.byKey[strings.ToLower(key)]; dup {
			continue
		}
		f := field{key: key, label: Humanize(key), goName: sf.Name, index: sf.Index}
		s.fields = append(s.fields, f)
		i := len(s.fields) - 1
		s.byKey[strings.ToLower(key)] = i
		s.byGoName[sf.Name] = i
	}
}

func crossesPointer(typ reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		ft := typ.Field(i).Type
		if ft.Kind() == reflect.Pointer {
			return true
		}
		typ = ft
	}
	return false
}

func (s *Schema[T]) lookup(key string) (field, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if i, ok := s.byKey[k]; ok {
		return s.fields[i], true
	}
	for i, f := range s.fields {
		if strings.ToLower(f.goName) == k {
			return s.fields[i], true
		}
	}
	return field{}, false
}

func (s *Schema[T]) decode(dst *T, f field, raw any) error {
	target := reflect.ValueOf(dst).Elem().FieldByIndex(f.index)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target.Addr().Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (s *Schema[T]) initValidator(rules []customRule) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		if i, ok := s.byGoName[sf.Name]; ok {
			return s.fields[i].label
		}
		return Humanize(sf.Name)
	})

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator(locale.Locale())
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return fmt.Errorf("register translations: %w", err)
	}

	for _, r := range rules {
		if r.tag == "" || r.fn == nil {
			return commonerr.InvalidArgument("custom validation needs a tag and a func")
		}
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			return fmt.Errorf("register validation %s: %w", r.tag, err)
		}
		msg := strings.TrimSpace(r.message)
		if msg == "" {
			msg = "is invalid"
		}
		if !strings.Contains(msg, "{0}") {
			msg = "{0} " + msg
		}
		err := v.RegisterTranslation(r.tag, trans,
			func(t ut.Translator) error { return t.Add(r.tag, msg, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				out, err := t.T(fe.Tag(), fe.Field(), fe.Param())
				if err != nil {
					return fe.Field() + " is invalid"
				}
				return out
			},
		)
		if err != nil {
			return fmt.Errorf("register translation %s: %w", r.tag, err)
		}
	}

	s.validate = v
	s.trans = trans
	return nil
}

func (s *Schema[T]) validateStruct(v *T, errs *Errors, skip map[string]bool) {
	err := s.validate.Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(Base, err.Error())
		return
	}
	for _, fe := range verrs {
		key, label := fe.Field(), fe.Field()
		if i, ok := s.byGoName[fe.StructField()]; ok {
			key, label = s.fields[i].key, s.fields[i].label
		}
		if skip[key] {
			continue
		}
		msg := fe.Translate(s.trans)
		if msg == "" || msg == fe.Error() {
			msg = "is invalid"
		} else {
			msg = strings.TrimPrefix(msg, fe.Field()+" ")
		}
		errs.add(key, label, msg)
	}
}

// Args is one constructed, validated argument payload.
type Args[T any] struct {
	Values T

	schema *Schema[T]
	errors *Errors
	failed map[string]bool
}

// Valid recomputes the errors: coercion failures, then struct tags, then
// record-level rules.
func (a *Args[T]) Valid() bool {
	a.errors.Clear()
	for _, f := range a.schema.fields {
		if a.failed[f.key] {
			a.errors.add(f.key, f.label, "is invalid")
		}
	}
	a.schema.validateStruct(&a.Values, a.errors, a.failed)
	for _, fn := range a.schema.record {
		fn(&a.Values, a.errors)
	}
	return a.errors.Empty()
}

// Errors returns the errors of the last validation.
func (a *Args[T]) Errors() *Errors { return a.errors }

// Messages validates and returns the full error messages.
func (a *Args[T]) Messages() []string {
	a.Valid()
	return a.errors.FullMessages()
}

func (a *Args[T]) Schema() *Schema[T] { return a.schema }

// Attributes returns key to value for every field.
func (a *Args[T]) Attributes() map[string]any {
	out := make(map[string]any, len(a.schema.fields))
	rv := reflect.ValueOf(&a.Values).Elem()
	for _, f := range a.schema.fields {
		out[f.key] = rv.FieldByIndex(f.index).Interface()
	}
	return out
}

// JSON renders Attributes for storage in a JSON column.
func (a *Args[T]) JSON() (datatypes.JSON, error) {
	b, err := json.Marshal(a.Attributes())
	if err != nil {
		return nil, fmt.Errorf("args %s: marshal attributes: %w", a.schema.name, err)
	}
	return datatypes.JSON(b), nil
}
