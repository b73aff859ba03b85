package render

import (
	"fmt"

	"nerdbook/internal/ctxkeys"
	"nerdbook/internal/notebook"
)

// FormatExecutionOrder renders the execution-order label text: "[   ]" when
// no order is tracked or assigned, "[ N ]" otherwise.
func FormatExecutionOrder(order *int, tracked bool) string {
	if !tracked || order == nil {
		return "[   ]"
	}
	return fmt.Sprintf("[ %d ]", *order)
}

// projector recomputes the derived facts of one binding (editable,
// edit-mode, run-state, execution-order label) from the cell's metadata
// plus the document-wide metadata, and republishes them into the binding's
// scoped context. Each apply* entry point recomputes only the affected
// facts; nothing here triggers a rebind.
type projector struct {
	cell *notebook.Cell
	doc  *notebook.Document
	tmpl *Template

	kKind     *ctxkeys.Key[string]
	kViewType *ctxkeys.Key[string]
	kEditable *ctxkeys.Key[bool]
	kEditMode *ctxkeys.Key[string]
	kRunState *ctxkeys.Key[string]
}

// seed creates the context keys and publishes the initial derived state.
func seedProjector(ctx *ctxkeys.Context, cell *notebook.Cell, doc *notebook.Document, tmpl *Template) *projector {
	p := &projector{cell: cell, doc: doc, tmpl: tmpl}
	p.kKind = ctxkeys.NewKey(ctx, ctxkeys.KeyCellKind, cell.Kind().String())
	p.kViewType = ctxkeys.NewKey(ctx, ctxkeys.KeyViewType, cell.ViewType())
	p.kEditable = ctxkeys.NewKey(ctx, ctxkeys.KeyCellEditable, cell.Metadata().Editable)

	switch cell.Kind() {
	case notebook.MarkupCell:
		p.kEditMode = ctxkeys.NewKey(ctx, ctxkeys.KeyCellEditMode, cell.EditState().String())
	case notebook.CodeCell:
		p.kRunState = ctxkeys.NewKey(ctx, ctxkeys.KeyCellRunState, cell.RunState().String())
		p.applyExecOrder(cell.Metadata(), doc.Metadata())
	}
	return p
}

// applyCellMetadata republishes metadata-derived facts after a cell
// metadata tick.
func (p *projector) applyCellMetadata(md notebook.CellMetadata) {
	p.kEditable.Set(md.Editable)
	if p.cell.Kind() == notebook.CodeCell {
		p.applyExecOrder(md, p.doc.Metadata())
	}
}

// applyDocMetadata republishes document-derived facts after a document
// metadata tick.
func (p *projector) applyDocMetadata(md notebook.DocumentMetadata) {
	if p.cell.Kind() == notebook.CodeCell {
		p.applyExecOrder(p.cell.Metadata(), md)
	}
}

// applyEditState republishes the edit-mode fact.
func (p *projector) applyEditState(s notebook.EditState) {
	if p.kEditMode != nil {
		p.kEditMode.Set(s.String())
	}
}

// applyRunState republishes the run-state fact.
func (p *projector) applyRunState(s notebook.RunState) {
	if p.kRunState != nil {
		p.kRunState.Set(s.String())
	}
}

func (p *projector) applyExecOrder(md notebook.CellMetadata, doc notebook.DocumentMetadata) {
	if p.tmpl.ExecLabel != nil {
		p.tmpl.ExecLabel.SetText(FormatExecutionOrder(md.ExecutionOrder, doc.TrackExecutionOrder))
	}
}
