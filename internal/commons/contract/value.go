package contract

import (
	"fmt"
	"strconv"
)

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindInt
	KindSymbol
	KindBool
	KindObject
	// KindInvalid marks a value whose coercion failed.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindSymbol:
		return "symbol"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindInvalid:
		return "invalid"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Symbol is an interned token, distinct from a plain string.
type Symbol string

// Value is a tagged input value. The zero Value is absent.
type Value struct {
	kind Kind
	str  string
	num  int64
	flag bool
	obj  any
	err  error
}

func Absent() Value         { return Value{} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Int(n int64) Value     { return Value{kind: KindInt, num: n} }
func Sym(s string) Value    { return Value{kind: KindSymbol, str: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, flag: b} }
func Object(v any) Value    { return Value{kind: KindObject, obj: v} }

func invalid(raw Value, err error) Value {
	return Value{kind: KindInvalid, str: raw.String(), obj: raw.Interface(), err: err}
}

// ValueOf lifts a plain Go value into a Value.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Absent()
	case Value:
		return t
	case string:
		return String(t)
	case Symbol:
		return Sym(string(t))
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return Int(int64(t))
	default:
		return Object(v)
	}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsAbsent() bool  { return v.kind == KindAbsent }
func (v Value) IsInvalid() bool { return v.kind == KindInvalid }

// Err returns the coercion error carried by an invalid value.
func (v Value) Err() error { return v.err }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsSymbol() (Symbol, bool) {
	if v.kind != KindSymbol {
		return "", false
	}
	return Symbol(v.str), true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

// Interface returns the plain Go value: string, int64, Symbol, bool, the wrapped
// object, or nil when absent. Invalid values return the raw input.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindSymbol:
		return Symbol(v.str)
	case KindBool:
		return v.flag
	case KindObject, KindInvalid:
		return v.obj
	default:
		return nil
	}
}

// String renders the value's string form.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindSymbol, KindInvalid:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindObject:
		if s, ok := v.obj.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(v.obj)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload. Objects
// compare with ==, so uncomparable objects are never equal.
func (v Value) Equal(o Value) (eq bool) {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent:
		return true
	case KindString, KindSymbol, KindInvalid:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
	default:
		defer func() {
			if recover() != nil {
				eq = false
			}
		}()
		return v.obj == o.obj
	}
}

// Presence decides whether a value counts as provided.
type Presence func(Value) bool

// Truthy treats absent, false and "" as missing.
func Truthy(v Value) bool {
	switch v.kind {
	case KindAbsent:
		return false
	case KindBool:
		return v.flag
	case KindString:
		return v.str != ""
	case KindObject:
		return v.obj != nil
	default:
		return true
	}
}

// Strict treats only an unset value as missing.
func Strict(v Value) bool {
	if v.kind == KindObject {
		return v.obj != nil
	}
	return v.kind != KindAbsent
}
