package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nerdbook/internal/menus"
)

// Toolbar displays the actions of one menu query and forwards invocations
// with the action context the binder installed. Repopulation is wholesale:
// every menu change replaces the full action list.
type Toolbar struct {
	groups []menus.Group
	args   any

	style     lipgloss.Style
	separator string
}

// NewToolbar creates an empty toolbar.
func NewToolbar() *Toolbar {
	return &Toolbar{
		style:     lipgloss.NewStyle().Faint(true),
		separator: " │ ",
	}
}

// SetActions replaces the toolbar contents.
func (t *Toolbar) SetActions(groups []menus.Group) {
	t.groups = groups
}

// Clear drops all actions and the action context.
func (t *Toolbar) Clear() {
	t.groups = nil
	t.args = nil
}

// SetActionContext installs the invocation argument passed to Run.
func (t *Toolbar) SetActionContext(args any) {
	t.args = args
}

// ActionContext returns the installed invocation argument.
func (t *Toolbar) ActionContext() any {
	return t.args
}

// Actions returns the flattened action list in display order.
func (t *Toolbar) Actions() []menus.Action {
	var out []menus.Action
	for _, g := range t.groups {
		out = append(out, g.Actions...)
	}
	return out
}

// ActionIDs returns the ids of the current actions in display order.
func (t *Toolbar) ActionIDs() []string {
	var out []string
	for _, a := range t.Actions() {
		out = append(out, a.ID)
	}
	return out
}

// Invoke runs the action with the given id against the installed context.
func (t *Toolbar) Invoke(id string) error {
	for _, a := range t.Actions() {
		if a.ID == id {
			if a.Run == nil {
				return nil
			}
			return a.Run(t.args)
		}
	}
	return fmt.Errorf("toolbar: no action %q", id)
}

// View renders the toolbar as one line, groups separated by the divider.
func (t *Toolbar) View() string {
	var parts []string
	for _, g := range t.groups {
		var titles []string
		for _, a := range g.Actions {
			label := a.Title
			if a.Icon != "" {
				label = a.Icon + " " + label
			}
			titles = append(titles, label)
		}
		parts = append(parts, strings.Join(titles, "  "))
	}
	return t.style.Render(strings.Join(parts, t.separator))
}
