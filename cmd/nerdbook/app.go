package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"nerdbook/internal/config"
	"nerdbook/internal/ctxkeys"
	"nerdbook/internal/kernel"
	"nerdbook/internal/logging"
	"nerdbook/internal/menus"
	"nerdbook/internal/notebook"
	"nerdbook/internal/render"
	"nerdbook/internal/store"
	"nerdbook/internal/virtlist"
)

type cellDoneMsg struct {
	cellID string
	err    error
}

// cellStateMsg carries one kernel-side cell mutation into the update loop.
// The kernel goroutine never touches cells directly; it sends these, so the
// change notifications (and the widget updates they trigger) run on the UI
// goroutine only.
type cellStateMsg struct {
	apply func()
}

type diskChangeMsg struct{}

// appModel is the bubbletea model tying the document, the virtualized cell
// list, and the kernel together. It implements render.NotebookEditor so menu
// actions can reach the kernel without global state.
type appModel struct {
	cfg  config.Config
	path string

	doc      *notebook.Document
	keys     *ctxkeys.Service
	menus    *menus.Service
	renderer *render.Renderer
	delegate *render.Delegate
	engine   *virtlist.Engine
	kernel   *kernel.Kernel

	program *tea.Program

	width   int
	height  int
	focused int
	editing bool
	status  string

	log *zap.Logger
}

func newApp(cfg config.Config, doc *notebook.Document, path string) *appModel {
	m := &appModel{
		cfg:    cfg,
		path:   path,
		doc:    doc,
		keys:   ctxkeys.NewService(),
		kernel: kernel.New(cfg.Kernel),
		log:    logging.Get(logging.CategoryBoot),
	}
	m.menus = menus.NewService(m.keys)
	m.renderer = render.NewRenderer(doc, cfg, m.keys, m.menus, m, 80)
	m.delegate = render.NewDelegate(cfg)
	m.engine = virtlist.New(doc, m.renderer, m.delegate, 24)
	m.doc.CellsChanged.Subscribe(func(int) { m.refresh() })
	m.registerDefaultActions()
	return m
}

// runApp starts the interactive notebook UI and blocks until it exits.
func runApp(cfg config.Config, doc *notebook.Document, path string) error {
	app := newApp(cfg, doc, path)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.program = p
	app.kernel.SetDispatcher(func(fn func()) {
		p.Send(cellStateMsg{apply: fn})
	})

	if path != "" {
		stop, err := store.Watch(path, func() { p.Send(diskChangeMsg{}) })
		if err != nil {
			return err
		}
		defer stop()
	}

	_, err := p.Run()
	app.engine.Dispose()
	return err
}

// Document implements render.NotebookEditor.
func (m *appModel) Document() *notebook.Document { return m.doc }

// ExecuteCell implements render.NotebookEditor. The kernel call blocks, so
// it runs on its own goroutine. Its cell mutations arrive back as
// cellStateMsg through the dispatcher, keeping all notification delivery on
// the update loop.
func (m *appModel) ExecuteCell(cell *notebook.Cell) {
	go func() {
		err := m.kernel.Execute(context.Background(), cell)
		if m.program != nil {
			m.program.Send(cellDoneMsg{cellID: cell.ID(), err: err})
		}
	}()
}

// CancelCell implements render.NotebookEditor.
func (m *appModel) CancelCell(cell *notebook.Cell) {
	m.kernel.Cancel(cell)
}

// FocusCell implements render.NotebookEditor.
func (m *appModel) FocusCell(cell *notebook.Cell) {
	if i := m.doc.IndexOf(cell); i >= 0 {
		m.setFocus(i)
	}
}

// registerDefaultActions fills the built-in menus. Predicates read the
// binding's scoped context, so each cell's toolbar only offers what applies
// to that cell right now.
func (m *appModel) registerDefaultActions() {
	m.menus.Register(menus.CellTitleMenu, menus.Action{
		ID: "cell.run", Title: "Run", Icon: "▶", Group: "run", Order: 0,
		When: menus.WhenEquals(ctxkeys.KeyCellKind, "code"),
		Run: func(args any) error {
			if ac, ok := args.(render.ActionContext); ok {
				ac.Editor.ExecuteCell(ac.Cell)
			}
			return nil
		},
	})
	m.menus.Register(menus.CellTitleMenu, menus.Action{
		ID: "cell.edit", Title: "Edit", Icon: "✎", Group: "edit", Order: 0,
		When: menus.WhenEquals(ctxkeys.KeyCellEditMode, "preview"),
		Run: func(args any) error {
			if ac, ok := args.(render.ActionContext); ok {
				ac.Cell.SetEditState(notebook.Editing)
			}
			return nil
		},
	})
	m.menus.Register(menus.CellTitleMenu, menus.Action{
		ID: "cell.preview", Title: "Done", Icon: "✓", Group: "edit", Order: 0,
		When: menus.WhenEquals(ctxkeys.KeyCellEditMode, "editing"),
		Run: func(args any) error {
			if ac, ok := args.(render.ActionContext); ok {
				ac.Cell.SetEditState(notebook.Preview)
			}
			return nil
		},
	})
	m.menus.Register(menus.CellTitleMenu, menus.Action{
		ID: "cell.delete", Title: "Delete", Icon: "✕", Group: "modify", Order: 9,
		Run: func(args any) error {
			if ac, ok := args.(render.ActionContext); ok {
				ac.Editor.Document().Remove(ac.Cell)
			}
			return nil
		},
	})

	m.menus.Register(menus.CellInsertMenu, menus.Action{
		ID: "insert.code", Title: "+ Code", Group: "insert", Order: 0,
		Run: func(args any) error {
			if ac, ok := args.(render.ActionContext); ok {
				doc := ac.Editor.Document()
				return doc.InsertAfter(doc.IndexOf(ac.Cell), notebook.NewCell(notebook.CodeCell, ""))
			}
			return nil
		},
	})
	m.menus.Register(menus.CellInsertMenu, menus.Action{
		ID: "insert.markup", Title: "+ Markdown", Group: "insert", Order: 1,
		Run: func(args any) error {
			if ac, ok := args.(render.ActionContext); ok {
				doc := ac.Editor.Document()
				return doc.InsertAfter(doc.IndexOf(ac.Cell), notebook.NewCell(notebook.MarkupCell, ""))
			}
			return nil
		},
	})
}

func (m *appModel) Init() tea.Cmd {
	return nil
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.engine.SetViewHeight(msg.Height - 2)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case cellStateMsg:
		return m.applyCellState(msg)

	case cellDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.log.Warn("execution error", zap.Error(msg.err))
		}
		m.refresh()
		return m, nil

	case diskChangeMsg:
		m.status = "notebook changed on disk (save will overwrite)"
		return m, nil
	}

	// Everything else (spinner ticks, mouse) goes to the bound widgets.
	var cmds []tea.Cmd
	for _, cell := range m.engine.VisibleCells() {
		tmpl := m.engine.Bound(cell.ID())
		if tmpl == nil {
			continue
		}
		if tmpl.Progress != nil && tmpl.Progress.Visible() {
			cmds = append(cmds, tmpl.Progress.Update(msg))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		m.setFocus(m.focused - 1)
	case "down", "j":
		m.setFocus(m.focused + 1)

	case "enter", "e":
		m.enterEdit()
		return m, nil

	case "r":
		if cell := m.focusedCell(); cell != nil && cell.Kind() == notebook.CodeCell {
			m.ExecuteCell(cell)
		}
	case "x":
		if cell := m.focusedCell(); cell != nil {
			m.CancelCell(cell)
		}

	case "o":
		m.insertAfterFocus(notebook.CodeCell)
	case "m":
		m.insertAfterFocus(notebook.MarkupCell)
	case "d":
		if cell := m.focusedCell(); cell != nil {
			m.doc.Remove(cell)
			m.setFocus(m.focused)
			m.refresh()
		}

	case "s":
		m.save()
	}
	return m, nil
}

// handleEditKey routes keys into the focused cell's embedded editor until
// escape ends the edit.
func (m *appModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cell := m.focusedCell()
	if cell == nil {
		m.editing = false
		return m, nil
	}
	tmpl := m.engine.Bound(cell.ID())
	if tmpl == nil {
		m.editing = false
		return m, nil
	}

	if msg.String() == "esc" {
		m.editing = false
		tmpl.Editor.Blur()
		if cell.Kind() == notebook.MarkupCell {
			cell.SetEditState(notebook.Preview)
		} else {
			cell.SetSource(tmpl.Editor.Value())
		}
		m.refresh()
		return m, nil
	}

	cmd := tmpl.Editor.Update(msg)
	return m, cmd
}

func (m *appModel) enterEdit() {
	cell := m.focusedCell()
	if cell == nil || !cell.Metadata().Editable {
		return
	}
	if cell.Kind() == notebook.MarkupCell {
		cell.SetEditState(notebook.Editing)
	}
	if tmpl := m.engine.Bound(cell.ID()); tmpl != nil {
		tmpl.Editor.Focus()
		m.editing = true
	}
}

func (m *appModel) insertAfterFocus(kind notebook.CellKind) {
	if err := m.doc.InsertAfter(m.focused, notebook.NewCell(kind, "")); err != nil {
		m.status = err.Error()
		return
	}
	m.setFocus(m.focused + 1)
	m.refresh()
}

func (m *appModel) save() {
	if m.path == "" {
		m.status = "no file to save to (start nerdbook with a path)"
		return
	}
	if err := store.Save(m.path, m.doc); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "saved " + m.path
}

func (m *appModel) focusedCell() *notebook.Cell {
	return m.doc.CellAt(m.focused)
}

// setFocus clamps, scrolls the cell into view, and moves the focus
// indicator between bound templates.
func (m *appModel) setFocus(i int) {
	if n := m.doc.Len(); n == 0 {
		m.focused = 0
		return
	} else if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	m.focused = i
	m.scrollIntoView(i)

	for j, cell := range m.doc.Cells() {
		if tmpl := m.engine.Bound(cell.ID()); tmpl != nil {
			tmpl.Focus.SetFocused(j == i)
		}
	}
}

func (m *appModel) scrollIntoView(i int) {
	top := 0
	for j, cell := range m.doc.Cells() {
		if j == i {
			break
		}
		top += m.delegate.Height(cell)
	}
	h := m.delegate.Height(m.doc.CellAt(i))
	view := m.height - 2

	switch {
	case top < m.engine.ScrollTop():
		m.scrollTo(top)
	case top+h > m.engine.ScrollTop()+view:
		m.scrollTo(top + h - view)
	default:
		m.refresh()
	}
}

func (m *appModel) scrollTo(top int) {
	if err := m.engine.ScrollTo(top); err != nil {
		m.status = err.Error()
	}
}

// applyCellState runs one kernel-side mutation on the UI goroutine and
// refreshes the window, since outputs change cell heights. A spinner tick is
// started for every progress indicator the mutation turned visible; the tick
// chain keeps itself alive afterwards and dies when the indicator hides.
func (m *appModel) applyCellState(msg cellStateMsg) (tea.Model, tea.Cmd) {
	before := m.visibleProgress()
	msg.apply()
	m.refresh()

	var cmds []tea.Cmd
	for id, tmpl := range m.boundTemplates() {
		if tmpl.Progress != nil && tmpl.Progress.Visible() && !before[id] {
			cmds = append(cmds, tmpl.Progress.Tick())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) boundTemplates() map[string]*render.Template {
	out := map[string]*render.Template{}
	for _, cell := range m.engine.VisibleCells() {
		if tmpl := m.engine.Bound(cell.ID()); tmpl != nil {
			out[cell.ID()] = tmpl
		}
	}
	return out
}

func (m *appModel) visibleProgress() map[string]bool {
	out := map[string]bool{}
	for id, tmpl := range m.boundTemplates() {
		out[id] = tmpl.Progress != nil && tmpl.Progress.Visible()
	}
	return out
}

func (m *appModel) refresh() {
	if err := m.engine.Refresh(); err != nil {
		m.status = err.Error()
		m.log.Warn("refresh failed", zap.Error(err))
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
)

func (m *appModel) View() string {
	title := m.path
	if title == "" {
		title = "(unsaved notebook)"
	}
	header := headerStyle.Render(fmt.Sprintf("nerdbook  %s  cells:%d runs:%d",
		title, m.doc.Len(), m.kernel.ExecutionCount()))

	footer := m.status
	if footer == "" {
		if m.editing {
			footer = "esc: done editing"
		} else {
			footer = "j/k: move  e: edit  r: run  x: cancel  o/m: insert  d: delete  s: save  q: quit"
		}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.engine.View())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}
