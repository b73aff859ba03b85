package render

import "nerdbook/internal/notebook"

// NotebookEditor is the surface actions use to operate on the hosting
// notebook without global lookups. The application model implements it.
type NotebookEditor interface {
	Document() *notebook.Document
	ExecuteCell(cell *notebook.Cell)
	CancelCell(cell *notebook.Cell)
	FocusCell(cell *notebook.Cell)
}

// ActionContext is the invocation argument installed into every toolbar the
// binder populates. Actions resolve their target from it.
type ActionContext struct {
	Cell     *notebook.Cell
	Editor   NotebookEditor
	Template *Template
}

// buildActionContext assembles the invocation argument for one binding.
func buildActionContext(cell *notebook.Cell, editor NotebookEditor, tmpl *Template) ActionContext {
	return ActionContext{Cell: cell, Editor: editor, Template: tmpl}
}
