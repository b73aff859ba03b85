// Package menus is the contextual-menu provider: actions register against a
// menu id with a context predicate, and consumers query a grouped, filtered
// action list for a given scoped context. A change notification fires when a
// menu's contents may have moved, either because registrations changed or
// because a context key any predicate might read has changed.
package menus

import (
	"sort"
	"sync"

	"nerdbook/internal/ctxkeys"
	"nerdbook/internal/events"
)

// MenuID names one menu surface.
type MenuID string

// Menu surfaces populated by the cell renderer.
const (
	CellTitleMenu  MenuID = "cell/title"
	CellInsertMenu MenuID = "cell/insert"
)

// Action is one invokable menu entry. When is evaluated against the querying
// context; a nil When always matches. Run receives the invocation context the
// renderer built for the owning cell.
type Action struct {
	ID    string
	Title string
	Icon  string
	Group string
	Order int
	When  func(*ctxkeys.Context) bool
	Run   func(args any) error
}

// Group is one named slice of the query result, in stable group order.
type Group struct {
	Name    string
	Actions []Action
}

// Service registers actions and answers grouped queries.
type Service struct {
	mu    sync.Mutex
	items map[MenuID][]Action

	// Changed fires with the menu id whose contents may have changed. A
	// context-key tick fires every menu, since predicates are opaque.
	Changed events.Emitter[MenuID]
}

// NewService creates an empty menu service wired to the context service's
// change feed.
func NewService(keys *ctxkeys.Service) *Service {
	s := &Service{items: map[MenuID][]Action{}}
	if keys != nil {
		keys.Changed.Subscribe(func(string) {
			s.mu.Lock()
			ids := make([]MenuID, 0, len(s.items))
			for id := range s.items {
				ids = append(ids, id)
			}
			s.mu.Unlock()
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				s.Changed.Fire(id)
			}
		})
	}
	return s
}

// Register adds an action to a menu and notifies.
func (s *Service) Register(menu MenuID, a Action) {
	s.mu.Lock()
	s.items[menu] = append(s.items[menu], a)
	s.mu.Unlock()
	s.Changed.Fire(menu)
}

// Query returns the actions of menu whose predicates pass against ctx,
// grouped by Group name and ordered by (group, order, id).
func (s *Service) Query(menu MenuID, ctx *ctxkeys.Context) []Group {
	s.mu.Lock()
	actions := make([]Action, len(s.items[menu]))
	copy(actions, s.items[menu])
	s.mu.Unlock()

	matched := actions[:0]
	for _, a := range actions {
		if a.When == nil || a.When(ctx) {
			matched = append(matched, a)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Group != matched[j].Group {
			return matched[i].Group < matched[j].Group
		}
		if matched[i].Order != matched[j].Order {
			return matched[i].Order < matched[j].Order
		}
		return matched[i].ID < matched[j].ID
	})

	var groups []Group
	for _, a := range matched {
		if len(groups) == 0 || groups[len(groups)-1].Name != a.Group {
			groups = append(groups, Group{Name: a.Group})
		}
		g := &groups[len(groups)-1]
		g.Actions = append(g.Actions, a)
	}
	return groups
}

// WhenEquals builds a predicate that matches when the named context key holds
// the given value.
func WhenEquals[T comparable](name string, want T) func(*ctxkeys.Context) bool {
	return func(ctx *ctxkeys.Context) bool {
		v, ok := ctx.Value(name)
		if !ok {
			return false
		}
		t, ok := v.(T)
		return ok && t == want
	}
}
