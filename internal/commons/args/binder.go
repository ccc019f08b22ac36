package args

// Arguments is the validated input payload a command, presenter or query holds.
type Arguments interface {
	Valid() bool
	Messages() []string
}

// Binder constructs Arguments from a keyword map. Unknown keys and other
// programmer errors are returned; validation failures live on the result.
type Binder[A Arguments] interface {
	Bind(opts map[string]any) (A, error)
}

// BinderFunc adapts a plain function to Binder.
type BinderFunc[A Arguments] func(opts map[string]any) (A, error)

func (f BinderFunc[A]) Bind(opts map[string]any) (A, error) { return f(opts) }
