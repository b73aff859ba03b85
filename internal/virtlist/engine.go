// Package virtlist is a small pooled virtual list engine for notebook
// cells. It owns the template pools and the scroll window, and drives the
// renderer's contracts: sizing queries, template creation, element
// bind/unbind, and template teardown. Pooling policy lives here and only
// here; the renderer never calls back into it.
package virtlist

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nerdbook/internal/logging"
	"nerdbook/internal/notebook"
	"nerdbook/internal/render"
)

type slot struct {
	cell *notebook.Cell
	tmpl *render.Template
	top  int
}

// Engine maps the visible window of a document onto a bounded pool of
// templates. Templates are recycled strictly: a slot's template returns to
// the pool only after DisposeElement ran for its previous cell.
type Engine struct {
	doc *notebook.Document
	r   *render.Renderer
	d   *render.Delegate

	viewHeight int
	scrollTop  int

	pools map[string][]*render.Template
	bound map[string]*slot
	order []string

	log *zap.Logger
}

// New creates an engine over doc with the given visible height in rows.
func New(doc *notebook.Document, r *render.Renderer, d *render.Delegate, viewHeight int) *Engine {
	return &Engine{
		doc:        doc,
		r:          r,
		d:          d,
		viewHeight: viewHeight,
		pools:      map[string][]*render.Template{},
		bound:      map[string]*slot{},
		log:        logging.Get(logging.CategoryRender),
	}
}

// SetViewHeight resizes the window. Call Refresh afterwards.
func (e *Engine) SetViewHeight(h int) { e.viewHeight = h }

// ScrollTop returns the current scroll offset in rows.
func (e *Engine) ScrollTop() int { return e.scrollTop }

// ScrollTo moves the window and rebinds. Negative offsets clamp to zero.
func (e *Engine) ScrollTo(top int) error {
	if top < 0 {
		top = 0
	}
	e.scrollTop = top
	return e.Refresh()
}

// ContentHeight returns the summed height of every cell.
func (e *Engine) ContentHeight() int {
	total := 0
	for _, c := range e.doc.Cells() {
		total += e.d.Height(c)
	}
	return total
}

// Refresh recomputes the visible range and reconciles bindings: cells that
// left the window are unbound and their templates pooled; cells that
// entered are bound to a pooled or freshly created template.
func (e *Engine) Refresh() error {
	type visible struct {
		cell   *notebook.Cell
		top    int
		height int
	}

	var vis []visible
	y := 0
	for _, c := range e.doc.Cells() {
		h := e.d.Height(c)
		if y+h > e.scrollTop && y < e.scrollTop+e.viewHeight {
			vis = append(vis, visible{cell: c, top: y, height: h})
		}
		y += h
	}

	want := map[string]visible{}
	for _, v := range vis {
		want[v.cell.ID()] = v
	}

	// Unbind first so departing templates are poolable for arrivals.
	for id, sl := range e.bound {
		if _, ok := want[id]; ok {
			continue
		}
		e.r.DisposeElement(sl.cell, sl.tmpl)
		e.release(sl.tmpl)
		delete(e.bound, id)
	}

	e.order = e.order[:0]
	for _, v := range vis {
		id := v.cell.ID()
		e.order = append(e.order, id)

		if sl, ok := e.bound[id]; ok {
			sl.top = v.top
			e.syncLayout(v.cell, v.height, v.top)
			continue
		}

		tmpl, err := e.acquire(v.cell)
		if err != nil {
			return err
		}
		if err := e.r.RenderElement(v.cell, tmpl, v.height); err != nil {
			e.release(tmpl)
			return fmt.Errorf("bind visible cell: %w", err)
		}
		e.bound[id] = &slot{cell: v.cell, tmpl: tmpl, top: v.top}
		e.syncLayout(v.cell, v.height, v.top)
	}

	return nil
}

func (e *Engine) syncLayout(cell *notebook.Cell, height, top int) {
	cell.SetLayout(notebook.Layout{
		Height:        height,
		ToolbarOffset: top - e.scrollTop,
	})
}

func (e *Engine) acquire(cell *notebook.Cell) (*render.Template, error) {
	id := e.d.TemplateID(cell)
	pool := e.pools[id]
	if n := len(pool); n > 0 {
		tmpl := pool[n-1]
		e.pools[id] = pool[:n-1]
		return tmpl, nil
	}
	e.log.Debug("growing template pool", zap.String("template", id))
	return e.r.CreateTemplate(cell.Kind())
}

func (e *Engine) release(tmpl *render.Template) {
	id := render.CodeTemplateID
	if tmpl.Kind == notebook.MarkupCell {
		id = render.MarkupTemplateID
	}
	e.pools[id] = append(e.pools[id], tmpl)
}

// Bound returns the template currently bound to a cell id, or nil.
func (e *Engine) Bound(cellID string) *render.Template {
	if sl, ok := e.bound[cellID]; ok {
		return sl.tmpl
	}
	return nil
}

// VisibleCells returns the cells in the window, top to bottom.
func (e *Engine) VisibleCells() []*notebook.Cell {
	out := make([]*notebook.Cell, 0, len(e.order))
	for _, id := range e.order {
		if sl, ok := e.bound[id]; ok {
			out = append(out, sl.cell)
		}
	}
	return out
}

// PooledTemplates reports the free pool size per template id.
func (e *Engine) PooledTemplates() map[string]int {
	out := map[string]int{}
	for id, pool := range e.pools {
		out[id] = len(pool)
	}
	return out
}

// View composes the visible slots top to bottom.
func (e *Engine) View() string {
	var parts []string
	for _, id := range e.order {
		sl, ok := e.bound[id]
		if !ok {
			continue
		}
		parts = append(parts, e.viewSlot(sl))
	}
	return strings.Join(parts, "\n")
}

func (e *Engine) viewSlot(sl *slot) string {
	t := sl.tmpl
	var b strings.Builder
	b.WriteString(t.TitleToolbar.View())
	b.WriteString("\n")

	switch t.Kind {
	case notebook.CodeCell:
		b.WriteString(t.ExecLabel.View())
		if t.Progress.Visible() {
			b.WriteString(" " + t.Progress.View())
		}
		b.WriteString(" " + t.RunToolbar.View())
		b.WriteString("\n")
		b.WriteString(t.Editor.View())
		if t.Output.ChildCount() > 0 {
			b.WriteString("\n")
			b.WriteString(t.Output.View())
		}
		b.WriteString("\n")
		b.WriteString(t.Insert.View())
	case notebook.MarkupCell:
		b.WriteString(t.Markdown.View())
	}
	return b.String()
}

// Dispose unbinds everything and permanently retires every template, both
// bound and pooled. The engine is unusable afterwards.
func (e *Engine) Dispose() {
	for id, sl := range e.bound {
		e.r.DisposeElement(sl.cell, sl.tmpl)
		e.r.DisposeTemplate(sl.tmpl)
		delete(e.bound, id)
	}
	for id, pool := range e.pools {
		for _, tmpl := range pool {
			e.r.DisposeTemplate(tmpl)
		}
		delete(e.pools, id)
	}
	e.order = nil
}
