package contract

// Input is the mutable opts payload a Contract is applied to. Keys keep their
// first insertion order.
type Input struct {
	values map[string]Value
	keys   []string
}

// NewInput builds an Input from plain Go values. Keys are added in sorted order
// because map iteration order is unspecified.
func NewInput(opts map[string]any) *Input {
	in := &Input{values: make(map[string]Value, len(opts))}
	for _, k := range sortedKeys(opts) {
		in.Set(k, ValueOf(opts[k]))
	}
	return in
}

func (in *Input) Get(name string) Value {
	if in == nil {
		return Absent()
	}
	return in.values[name]
}

func (in *Input) Has(name string) bool {
	if in == nil {
		return false
	}
	_, ok := in.values[name]
	return ok
}

func (in *Input) Set(name string, v Value) {
	if in.values == nil {
		in.values = map[string]Value{}
	}
	if _, ok := in.values[name]; !ok {
		in.keys = append(in.keys, name)
	}
	in.values[name] = v
}

func (in *Input) Delete(name string) {
	if _, ok := in.values[name]; !ok {
		return
	}
	delete(in.values, name)
	for i, k := range in.keys {
		if k == name {
			in.keys = append(in.keys[:i], in.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the set keys in insertion order.
func (in *Input) Keys() []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in.keys...)
}

// Map returns the plain Go view of every set key.
func (in *Input) Map() map[string]any {
	out := map[string]any{}
	if in == nil {
		return out
	}
	for _, k := range in.keys {
		out[k] = in.values[k].Interface()
	}
	return out
}

// String returns the string form of name, or "" when absent.
func (in *Input) String(name string) string {
	return in.Get(name).String()
}

// Int returns name as an integer, or 0 when it is not an integer.
func (in *Input) Int(name string) int64 {
	n, _ := in.Get(name).AsInt()
	return n
}

// Symbol returns name as a symbol, or "" when it is not a symbol.
func (in *Input) Symbol(name string) Symbol {
	s, _ := in.Get(name).AsSymbol()
	return s
}

func (in *Input) Len() int {
	if in == nil {
		return 0
	}
	return len(in.keys)
}
