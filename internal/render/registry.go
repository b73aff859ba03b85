package render

import (
	"sync"

	"nerdbook/internal/notebook"
	"nerdbook/internal/scope"
)

// Registry is the cross-cutting bookkeeping for live bindings: cell identity
// to resource scope, and cell identity to live editor instance. Both maps
// are mutated only by bind and unbind, and no entry may survive its cell's
// unbind. Enumeration exists so tests can verify exactly that after churn.
type Registry struct {
	mu      sync.Mutex
	scopes  map[string]*scope.Scope
	editors map[string]*EditorHost
}

// NewRegistry creates empty bookkeeping.
func NewRegistry() *Registry {
	return &Registry{
		scopes:  map[string]*scope.Scope{},
		editors: map[string]*EditorHost{},
	}
}

// Scope returns the live scope for a cell id, or nil.
func (r *Registry) Scope(cellID string) *scope.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scopes[cellID]
}

// setScope installs s as the live scope for cellID.
func (r *Registry) setScope(cellID string, s *scope.Scope) {
	r.mu.Lock()
	r.scopes[cellID] = s
	r.mu.Unlock()
}

// dropScope removes the entry for cellID iff it still maps to s. The guard
// keeps a stale scope's teardown from clobbering a successor installed by a
// rebind.
func (r *Registry) dropScope(cellID string, s *scope.Scope) {
	r.mu.Lock()
	if r.scopes[cellID] == s {
		delete(r.scopes, cellID)
	}
	r.mu.Unlock()
}

// Editor returns the live editor instance for a cell id, or nil.
func (r *Registry) Editor(cellID string) *EditorHost {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editors[cellID]
}

// setEditor records the live editor for cellID.
func (r *Registry) setEditor(cellID string, e *EditorHost) {
	r.mu.Lock()
	r.editors[cellID] = e
	r.mu.Unlock()
}

// dropEditor removes the live editor entry iff it still maps to e.
func (r *Registry) dropEditor(cellID string, e *EditorHost) {
	r.mu.Lock()
	if r.editors[cellID] == e {
		delete(r.editors, cellID)
	}
	r.mu.Unlock()
}

// LiveScopes enumerates the cell ids with a live scope.
func (r *Registry) LiveScopes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.scopes))
	for id := range r.scopes {
		out = append(out, id)
	}
	return out
}

// LiveEditors enumerates the cell ids with a live editor.
func (r *Registry) LiveEditors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.editors))
	for id := range r.editors {
		out = append(out, id)
	}
	return out
}

// Orphans returns registry entries whose cell is no longer in doc. A
// non-empty result is a leak; tests assert it stays empty after churn.
func (r *Registry) Orphans(doc *notebook.Document) []string {
	present := map[string]bool{}
	for _, c := range doc.Cells() {
		present[c.ID()] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var orphans []string
	for id := range r.scopes {
		if !present[id] {
			orphans = append(orphans, id)
		}
	}
	for id := range r.editors {
		if !present[id] {
			orphans = append(orphans, id)
		}
	}
	return orphans
}
