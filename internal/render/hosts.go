package render

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"nerdbook/internal/config"
	"nerdbook/internal/notebook"
)

// Child is one mounted unit of host content. Hosts track children explicitly
// so unbind can prove nothing from a previous binding survived.
type Child interface {
	View() string
}

// StaticContent is a pre-rendered child.
type StaticContent string

// View returns the rendered content.
func (s StaticContent) View() string { return string(s) }

// EditorHost wraps the embedded text editor widget. The widget is created
// once per template with fixed display overrides and re-bound to whichever
// cell currently occupies the template.
type EditorHost struct {
	ta   textarea.Model
	cell *notebook.Cell
}

// NewEditorHost builds the editor widget with the resolved options. The
// always-off chrome (line numbers, prompt gutter, char limit) comes from the
// fixed overrides, not user settings.
func NewEditorHost(opts config.EditorOptions) *EditorHost {
	ta := textarea.New()
	ta.ShowLineNumbers = opts.ShowLineNumbers
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = opts.MaxLines
	return &EditorHost{ta: ta}
}

// Bind attaches the editor to a cell's source buffer.
func (e *EditorHost) Bind(cell *notebook.Cell) {
	e.cell = cell
	e.ta.SetValue(cell.Source())
	e.ta.CursorStart()
}

// Detach flushes the buffer back into the bound cell and clears the widget.
// Detaching an unbound host is a no-op.
func (e *EditorHost) Detach() {
	if e.cell == nil {
		return
	}
	e.cell.SetSource(e.ta.Value())
	e.cell = nil
	e.ta.Reset()
}

// Bound returns the currently attached cell, or nil.
func (e *EditorHost) Bound() *notebook.Cell { return e.cell }

// Value returns the current buffer contents.
func (e *EditorHost) Value() string { return e.ta.Value() }

// Focus gives the widget keyboard focus.
func (e *EditorHost) Focus() tea.Cmd { return e.ta.Focus() }

// Blur removes keyboard focus.
func (e *EditorHost) Blur() { e.ta.Blur() }

// SetWidth resizes the widget.
func (e *EditorHost) SetWidth(w int) { e.ta.SetWidth(w) }

// Update routes a message to the widget.
func (e *EditorHost) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.ta, cmd = e.ta.Update(msg)
	return cmd
}

// View renders the widget.
func (e *EditorHost) View() string { return e.ta.View() }

// OutputHost displays a code cell's execution outputs in a scrollable
// region. Each output is one child.
type OutputHost struct {
	vp       viewport.Model
	children []Child
	errStyle lipgloss.Style
}

// NewOutputHost creates an output host with the given visible size.
func NewOutputHost(width, height int) *OutputHost {
	return &OutputHost{
		vp:       viewport.New(width, height),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Clear removes all children.
func (o *OutputHost) Clear() {
	o.children = nil
	o.vp.SetContent("")
}

// SetOutputs replaces the children with one child per output.
func (o *OutputHost) SetOutputs(outputs []notebook.Output) {
	o.children = nil
	for _, out := range outputs {
		text := out.Text
		if out.IsError {
			text = o.errStyle.Render(text)
		}
		o.children = append(o.children, StaticContent(text))
	}
	o.vp.SetContent(o.contentView())
}

// ChildCount reports the number of mounted children.
func (o *OutputHost) ChildCount() int { return len(o.children) }

// Update routes a message to the scroll region.
func (o *OutputHost) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	o.vp, cmd = o.vp.Update(msg)
	return cmd
}

func (o *OutputHost) contentView() string {
	var parts []string
	for _, c := range o.children {
		parts = append(parts, c.View())
	}
	return strings.Join(parts, "\n")
}

// View renders the scroll region.
func (o *OutputHost) View() string { return o.vp.View() }

// MarkdownHost displays a markup cell: either the rendered markdown or, in
// edit mode, the editor widget. At most one child is mounted at a time.
type MarkdownHost struct {
	renderer *glamour.TermRenderer
	children []Child
}

// NewMarkdownHost creates a markdown host rendering at the given wrap width.
func NewMarkdownHost(wrapWidth int) (*MarkdownHost, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return nil, err
	}
	return &MarkdownHost{renderer: r}, nil
}

// Clear removes all children.
func (m *MarkdownHost) Clear() {
	m.children = nil
}

// ShowRendered renders src to styled text and mounts it as the only child.
func (m *MarkdownHost) ShowRendered(src string) error {
	out, err := m.renderer.Render(src)
	if err != nil {
		return err
	}
	m.children = []Child{StaticContent(out)}
	return nil
}

// ShowEditor mounts the editor widget as the only child.
func (m *MarkdownHost) ShowEditor(e *EditorHost) {
	m.children = []Child{e}
}

// ChildCount reports the number of mounted children.
func (m *MarkdownHost) ChildCount() int { return len(m.children) }

// ShowsEditor reports whether the mounted child is the editor widget.
func (m *MarkdownHost) ShowsEditor() bool {
	if len(m.children) != 1 {
		return false
	}
	_, ok := m.children[0].(*EditorHost)
	return ok
}

// View renders the mounted child.
func (m *MarkdownHost) View() string {
	if len(m.children) == 0 {
		return ""
	}
	return m.children[0].View()
}
