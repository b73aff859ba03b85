// Package ctxkeys implements the scoped key/value context state that
// declarative enablement rules (menus, keybindings) query. Each cell binding
// creates a child context, publishes derived facts into it, and ties its
// lifetime to the binding's resource scope.
package ctxkeys

import (
	"sync"

	"nerdbook/internal/events"
)

// Service owns a tree of contexts and fires Changed with the affected key
// name whenever any context's value moves. Consumers that depend on several
// keys simply re-evaluate on every tick.
type Service struct {
	root *Context

	// Changed fires with the key name on every Set or Reset.
	Changed events.Emitter[string]
}

// NewService creates a service with an empty root context.
func NewService() *Service {
	s := &Service{}
	s.root = &Context{svc: s, values: map[string]any{}}
	return s
}

// Root returns the top-level context.
func (s *Service) Root() *Context {
	return s.root
}

// Context is one node in the context tree. Lookups walk toward the root, so
// scoped values shadow inherited ones.
type Context struct {
	svc      *Service
	parent   *Context
	mu       sync.Mutex
	values   map[string]any
	disposed bool
}

// NewScoped creates a child context.
func (c *Context) NewScoped() *Context {
	return &Context{svc: c.svc, parent: c, values: map[string]any{}}
}

// Value looks name up in this context, then its ancestors.
func (c *Context) Value(name string) (any, bool) {
	for n := c; n != nil; n = n.parent {
		n.mu.Lock()
		v, ok := n.values[name]
		disposed := n.disposed
		n.mu.Unlock()
		if disposed {
			return nil, false
		}
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Dispose drops the context's own values. Lookups through a disposed context
// return nothing; setting keys on it is a no-op. Idempotent.
func (c *Context) Dispose() {
	c.mu.Lock()
	c.disposed = true
	c.values = map[string]any{}
	c.mu.Unlock()
}

func (c *Context) set(name string, v any) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	prev, had := c.values[name]
	c.values[name] = v
	c.mu.Unlock()
	if !had || prev != v {
		c.svc.Changed.Fire(name)
	}
}

func (c *Context) unset(name string) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	_, had := c.values[name]
	delete(c.values, name)
	c.mu.Unlock()
	if had {
		c.svc.Changed.Fire(name)
	}
}

// Key is a typed handle to one value in one context.
type Key[T comparable] struct {
	name string
	ctx  *Context
}

// NewKey binds a key of the given name to ctx and publishes initial.
func NewKey[T comparable](ctx *Context, name string, initial T) *Key[T] {
	k := &Key[T]{name: name, ctx: ctx}
	ctx.set(name, initial)
	return k
}

// Name returns the key name.
func (k *Key[T]) Name() string { return k.name }

// Set publishes v. Setting an unchanged value fires no notification.
func (k *Key[T]) Set(v T) {
	k.ctx.set(k.name, v)
}

// Get reads the key back from its own context.
func (k *Key[T]) Get() (T, bool) {
	var zero T
	v, ok := k.ctx.Value(k.name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Reset removes the key from its context.
func (k *Key[T]) Reset() {
	k.ctx.unset(k.name)
}

// Well-known key names published per cell binding.
const (
	KeyCellKind     = "nerdbookCellKind"
	KeyViewType     = "nerdbookViewType"
	KeyCellEditable = "nerdbookCellEditable"
	KeyCellEditMode = "nerdbookCellEditMode"
	KeyCellRunState = "nerdbookCellRunState"
)
