// Package render implements the virtualized cell lifecycle: per-kind
// template construction, the bind/unbind protocol that loans pooled
// templates to cells, the derived-state projection into scoped context keys,
// and the sizing delegate the virtualization engine queries. The engine
// itself (pooling, scrolling) lives elsewhere; this package never makes
// pooling decisions.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"nerdbook/internal/config"
	"nerdbook/internal/ctxkeys"
	"nerdbook/internal/logging"
	"nerdbook/internal/menus"
	"nerdbook/internal/notebook"
	"nerdbook/internal/scope"
)

// Renderer owns the element binder and its bookkeeping. One Renderer serves
// one document view.
type Renderer struct {
	doc    *notebook.Document
	cfg    config.Config
	keys   *ctxkeys.Service
	menus  *menus.Service
	editor NotebookEditor
	reg    *Registry
	width  int
	log    *zap.Logger
}

// NewRenderer wires a renderer to its collaborators. width is the content
// width templates render at.
func NewRenderer(doc *notebook.Document, cfg config.Config, keys *ctxkeys.Service, menuSvc *menus.Service, editor NotebookEditor, width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	return &Renderer{
		doc:    doc,
		cfg:    cfg,
		keys:   keys,
		menus:  menuSvc,
		editor: editor,
		reg:    NewRegistry(),
		width:  width,
		log:    logging.Get(logging.CategoryRender),
	}
}

// Registry exposes the binding bookkeeping for the engine and for tests.
func (r *Renderer) Registry() *Registry { return r.reg }

// CreateTemplate builds one pooled slot for the given kind.
func (r *Renderer) CreateTemplate(kind notebook.CellKind) (*Template, error) {
	return CreateTemplate(kind, r.cfg, r.width)
}

// RenderElement binds cell into tmpl. A non-positive height marks a probe
// pass: the engine is measuring, so transient content is cleared and no
// heavy widgets attach. With a height, any previous scope for the cell is
// disposed first, the kind-specific content is attached, derived state is
// published into a fresh scoped context, and the toolbars are populated.
// Errors from widget attachment propagate to the engine's error boundary.
func (r *Renderer) RenderElement(cell *notebook.Cell, tmpl *Template, height int) error {
	if tmpl.Kind != cell.Kind() {
		// Kind mismatch means the engine routed through the wrong pool.
		panic(fmt.Sprintf("render: cell kind %v bound to %s template", cell.Kind(), tmpl.Kind))
	}

	if height <= 0 {
		tmpl.clearTransient()
		return nil
	}

	// Exactly one live scope per cell: tear down any predecessor before
	// allocating. The engine already orders unbind-before-rebind per slot;
	// this is the safety net for cross-slot rebinds.
	if old := r.reg.Scope(cell.ID()); old != nil {
		old.Dispose()
	}
	s := scope.New()
	r.reg.setScope(cell.ID(), s)
	s.Add(func() { r.reg.dropScope(cell.ID(), s) })

	// Clear previous host content synchronously so nothing from an earlier
	// binding of this template survives.
	if tmpl.Output != nil {
		tmpl.Output.Clear()
	}
	if tmpl.Markdown != nil {
		tmpl.Markdown.Clear()
	}

	if err := r.attachContent(cell, tmpl, s); err != nil {
		s.Dispose()
		return fmt.Errorf("bind cell %s: %w", cell.ID(), err)
	}

	ctx := r.keys.Root().NewScoped()
	s.Add(ctx.Dispose)
	proj := seedProjector(ctx, cell, r.doc, tmpl)

	r.subscribeCell(cell, tmpl, s, proj)
	r.populateToolbars(cell, tmpl, s, ctx)

	ac := buildActionContext(cell, r.editor, tmpl)
	tmpl.TitleToolbar.SetActionContext(ac)
	if tmpl.RunToolbar != nil {
		tmpl.RunToolbar.SetActionContext(ac)
		s.Add(tmpl.RunToolbar.Clear)
	}
	if tmpl.Insert != nil {
		tmpl.Insert.SetActionContext(ac)
		s.Add(tmpl.Insert.Clear)
	}
	s.Add(tmpl.TitleToolbar.Clear)

	tmpl.Focus.SetHeight(height)

	r.log.Debug("bound cell",
		zap.String("cell", cell.ID()),
		zap.String("kind", cell.Kind().String()),
		zap.Int("height", height))
	return nil
}

// attachContent mounts the kind-specific live content and registers its
// teardown into s.
func (r *Renderer) attachContent(cell *notebook.Cell, tmpl *Template, s *scope.Scope) error {
	switch cell.Kind() {
	case notebook.CodeCell:
		tmpl.Editor.Bind(cell)
		r.reg.setEditor(cell.ID(), tmpl.Editor)
		s.Add(func() {
			r.reg.dropEditor(cell.ID(), tmpl.Editor)
			tmpl.Editor.Detach()
		})
		tmpl.Output.SetOutputs(cell.Outputs())
		tmpl.Progress.SetVisible(cell.RunState() == notebook.RunRunning)

	case notebook.MarkupCell:
		// The editor detach is registered unconditionally: preview cells
		// can enter edit mode later, and detaching an unbound host is a
		// no-op.
		s.Add(tmpl.Editor.Detach)
		if cell.EditState() == notebook.Editing {
			tmpl.Editor.Bind(cell)
			tmpl.Markdown.ShowEditor(tmpl.Editor)
		} else if err := tmpl.Markdown.ShowRendered(cell.Source()); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	return nil
}

// subscribeCell wires the cell and document notifications. Every handler
// verifies the scope is still current before applying, so a notification
// that raced a recycle is silently dropped.
func (r *Renderer) subscribeCell(cell *notebook.Cell, tmpl *Template, s *scope.Scope, proj *projector) {
	current := func() bool { return r.reg.Scope(cell.ID()) == s }

	s.Add(cell.MetadataChanged.Subscribe(func(md notebook.CellMetadata) {
		if !current() {
			return
		}
		proj.applyCellMetadata(md)
	}))

	s.Add(r.doc.MetadataChanged.Subscribe(func(md notebook.DocumentMetadata) {
		if !current() {
			return
		}
		proj.applyDocMetadata(md)
	}))

	s.Add(cell.LayoutChanged.Subscribe(func(l notebook.Layout) {
		if !current() {
			return
		}
		tmpl.Focus.SetHeight(l.Height)
		if tmpl.Insert != nil {
			tmpl.Insert.SetOffset(l.ToolbarOffset)
		}
	}))

	switch cell.Kind() {
	case notebook.CodeCell:
		s.Add(cell.RunStateChanged.Subscribe(func(st notebook.RunState) {
			if !current() {
				return
			}
			proj.applyRunState(st)
			r.updateRunToolbar(tmpl, st)
			tmpl.Progress.SetVisible(st == notebook.RunRunning)
		}))
		s.Add(cell.OutputsChanged.Subscribe(func(outs []notebook.Output) {
			if !current() {
				return
			}
			tmpl.Output.SetOutputs(outs)
		}))

	case notebook.MarkupCell:
		s.Add(cell.EditStateChanged.Subscribe(func(st notebook.EditState) {
			if !current() {
				return
			}
			proj.applyEditState(st)
			tmpl.Markdown.Clear()
			if st == notebook.Editing {
				tmpl.Editor.Bind(cell)
				tmpl.Markdown.ShowEditor(tmpl.Editor)
				return
			}
			// Flush the buffer first so the rendered view reflects the
			// edit that just ended.
			tmpl.Editor.Detach()
			if err := tmpl.Markdown.ShowRendered(cell.Source()); err != nil {
				r.log.Warn("markdown render failed",
					zap.String("cell", cell.ID()), zap.Error(err))
			}
		}))
	}
}

// populateToolbars fills the title toolbar from the contextual menu query,
// re-running the full query on every menu change, and sets up the run
// toolbar and insertion affordance for code cells.
func (r *Renderer) populateToolbars(cell *notebook.Cell, tmpl *Template, s *scope.Scope, ctx *ctxkeys.Context) {
	current := func() bool { return r.reg.Scope(cell.ID()) == s }

	populateTitle := func() {
		tmpl.TitleToolbar.SetActions(r.menus.Query(menus.CellTitleMenu, ctx))
	}
	populateTitle()
	s.Add(r.menus.Changed.Subscribe(func(id menus.MenuID) {
		if id != menus.CellTitleMenu || !current() {
			return
		}
		populateTitle()
	}))

	if cell.Kind() != notebook.CodeCell {
		return
	}

	r.updateRunToolbar(tmpl, cell.RunState())

	populateInsert := func() {
		tmpl.Insert.SetActions(r.menus.Query(menus.CellInsertMenu, ctx))
	}
	populateInsert()
	s.Add(r.menus.Changed.Subscribe(func(id menus.MenuID) {
		if id != menus.CellInsertMenu || !current() {
			return
		}
		populateInsert()
	}))
	tmpl.Insert.SetOffset(cell.Layout().ToolbarOffset)
}

// updateRunToolbar swaps the single run action: Cancel while running,
// Execute otherwise.
func (r *Renderer) updateRunToolbar(tmpl *Template, st notebook.RunState) {
	var a menus.Action
	if st == notebook.RunRunning {
		a = menus.Action{
			ID: "cell.cancel", Title: "Cancel", Icon: "■", Group: "run",
			Run: func(args any) error {
				if ac, ok := args.(ActionContext); ok && ac.Editor != nil {
					ac.Editor.CancelCell(ac.Cell)
				}
				return nil
			},
		}
	} else {
		a = menus.Action{
			ID: "cell.execute", Title: "Execute", Icon: "▶", Group: "run",
			Run: func(args any) error {
				if ac, ok := args.(ActionContext); ok && ac.Editor != nil {
					ac.Editor.ExecuteCell(ac.Cell)
				}
				return nil
			},
		}
	}
	tmpl.RunToolbar.SetActions([]menus.Group{{Name: "run", Actions: []menus.Action{a}}})
}

// DisposeElement unbinds cell from tmpl. A probe bind has nothing to
// dispose. The focus indicator reset and the live editor registry entry are
// code-template concerns; the registry entry is released by the scope itself.
func (r *Renderer) DisposeElement(cell *notebook.Cell, tmpl *Template) {
	s := r.reg.Scope(cell.ID())
	if s == nil {
		return
	}
	s.Dispose()
	if tmpl != nil && tmpl.Kind == notebook.CodeCell {
		tmpl.Focus.Reset()
	}
	r.log.Debug("unbound cell", zap.String("cell", cell.ID()))
}

// DisposeTemplate retires a pooled slot permanently, releasing the
// factory-owned widgets. Never called on ordinary recycling.
func (r *Renderer) DisposeTemplate(tmpl *Template) {
	tmpl.templateScope.Dispose()
}
