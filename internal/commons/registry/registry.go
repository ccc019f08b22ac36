package registry

import (
	"fmt"
	"strings"
	"sync"

	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

// Registry maps names to definitions. Registration is explicit; a name can be
// registered once.
type Registry[V any] struct {
	mu     sync.RWMutex
	byName map[string]V
	order  []string
	sealed bool
}

func New[V any]() *Registry[V] {
	return &Registry[V]{byName: map[string]V{}}
}

func (r *Registry[V]) Register(name string, v V) error {
	if r == nil {
		return fmt.Errorf("nil registry")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return commonerr.InvalidArgument("registry: missing name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return commonerr.Tag(commonerr.ErrSealed, fmt.Errorf("registry: cannot register %s after seal", name))
	}
	if _, exists := r.byName[name]; exists {
		return commonerr.Tag(commonerr.ErrDuplicate, fmt.Errorf("registry: %s already registered", name))
	}
	r.byName[name] = v
	r.order = append(r.order, name)
	return nil
}

func (r *Registry[V]) MustRegister(name string, v V) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

func (r *Registry[V]) Lookup(name string) (V, bool) {
	var zero V
	if r == nil {
		return zero, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return zero, false
	}
	return v, true
}

// Names returns the registered names in registration order.
func (r *Registry[V]) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry[V]) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Seal rejects further registrations.
func (r *Registry[V]) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry[V]) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
