// Package scope implements the disposable-resource bundle that backs every
// cell-to-template binding. Everything acquired while a cell is bound (event
// subscriptions, widget handles, scoped context keys) registers a release
// func into one Scope, and disposal is a single reverse-order teardown.
package scope

import "sync"

// Scope collects release funcs and runs them in reverse registration order
// on Dispose. Dispose is idempotent and never panics outward: a panicking
// release is swallowed so the remaining releases still run.
type Scope struct {
	mu       sync.Mutex
	releases []func()
	disposed bool
}

// New returns an empty live scope.
func New() *Scope {
	return &Scope{}
}

// Add registers a release func. Adding to an already-disposed scope runs the
// release immediately so late registrations cannot leak.
func (s *Scope) Add(release func()) {
	if release == nil {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		safeRelease(release)
		return
	}
	s.releases = append(s.releases, release)
	s.mu.Unlock()
}

// Dispose tears the scope down, newest registration first. Safe to call more
// than once; only the first call does work.
func (s *Scope) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		safeRelease(releases[i])
	}
}

// IsDisposed reports whether Dispose has run.
func (s *Scope) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Len reports the number of pending releases. Used by tests.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.releases)
}

func safeRelease(release func()) {
	defer func() { _ = recover() }()
	release()
}
