package render

import (
	"fmt"

	"github.com/google/uuid"

	"nerdbook/internal/config"
	"nerdbook/internal/notebook"
	"nerdbook/internal/scope"
)

// Template ids routed by the sizing delegate.
const (
	CodeTemplateID   = "nerdbook.codeCell"
	MarkupTemplateID = "nerdbook.markupCell"
)

// Template is one pooled slot's widget bundle. It is built once per slot by
// CreateTemplate, loaned to whichever cell currently occupies the slot, and
// survives any number of bind/unbind cycles. The template-level scope owns
// factory-created widgets and is disposed only by DisposeTemplate.
type Template struct {
	SlotID string
	Kind   notebook.CellKind

	TitleToolbar *Toolbar
	Editor       *EditorHost
	Focus        *FocusIndicator

	// Code-only widgets; nil on markup templates.
	RunToolbar *Toolbar
	ExecLabel  *ExecOrderLabel
	Output     *OutputHost
	Progress   *ProgressIndicator
	Insert     *InsertBar

	// Markup-only widget; nil on code templates.
	Markdown *MarkdownHost

	templateScope *scope.Scope
}

// CreateTemplate builds the static widget skeleton for one pooled slot of
// the given kind. Widget display options are the user settings for the
// kind's language with the fixed overrides merged in; see config.
func CreateTemplate(kind notebook.CellKind, cfg config.Config, width int) (*Template, error) {
	t := &Template{
		SlotID:        uuid.NewString(),
		Kind:          kind,
		TitleToolbar:  NewToolbar(),
		Focus:         NewFocusIndicator(),
		templateScope: scope.New(),
	}
	t.templateScope.Add(t.TitleToolbar.Clear)

	switch kind {
	case notebook.CodeCell:
		t.Editor = NewEditorHost(cfg.ForLanguage("go"))
		t.RunToolbar = NewToolbar()
		t.ExecLabel = NewExecOrderLabel()
		t.Output = NewOutputHost(width, 10)
		t.Progress = NewProgressIndicator()
		t.Insert = NewInsertBar()
		t.templateScope.Add(t.RunToolbar.Clear)
		t.templateScope.Add(t.Insert.Clear)

	case notebook.MarkupCell:
		t.Editor = NewEditorHost(cfg.ForLanguage("markdown"))
		md, err := NewMarkdownHost(width)
		if err != nil {
			return nil, fmt.Errorf("create markdown host: %w", err)
		}
		t.Markdown = md

	default:
		// Unknown kinds are a programming error at the call site.
		return nil, fmt.Errorf("create template: unknown cell kind %d", kind)
	}

	return t, nil
}

// clearTransient drops everything a previous or probing bind may have left
// in the template, without touching factory-owned widgets.
func (t *Template) clearTransient() {
	t.TitleToolbar.Clear()
	if t.RunToolbar != nil {
		t.RunToolbar.Clear()
	}
	if t.Insert != nil {
		t.Insert.Clear()
	}
	if t.Output != nil {
		t.Output.Clear()
	}
	if t.Markdown != nil {
		t.Markdown.Clear()
	}
	if t.ExecLabel != nil {
		t.ExecLabel.SetText("")
	}
	if t.Progress != nil {
		t.Progress.SetVisible(false)
	}
}
