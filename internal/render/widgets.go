package render

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ExecOrderLabel shows a code cell's execution counter, e.g. "[ 3 ]".
type ExecOrderLabel struct {
	text  string
	style lipgloss.Style
}

// NewExecOrderLabel creates an empty label.
func NewExecOrderLabel() *ExecOrderLabel {
	return &ExecOrderLabel{
		style: lipgloss.NewStyle().Faint(true),
	}
}

// SetText replaces the label text.
func (l *ExecOrderLabel) SetText(text string) { l.text = text }

// Text returns the current label text.
func (l *ExecOrderLabel) Text() string { return l.text }

// View renders the label.
func (l *ExecOrderLabel) View() string { return l.style.Render(l.text) }

// FocusIndicator is the vertical strip marking the focused cell. Its height
// tracks the bound cell's layout and is reset on unbind.
type FocusIndicator struct {
	height  int
	focused bool
	style   lipgloss.Style
}

// NewFocusIndicator creates an unfocused zero-height indicator.
func NewFocusIndicator() *FocusIndicator {
	return &FocusIndicator{
		style: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// SetHeight sets the strip height in rows.
func (f *FocusIndicator) SetHeight(h int) { f.height = h }

// Height returns the strip height.
func (f *FocusIndicator) Height() int { return f.height }

// Reset returns the indicator to its unbound state.
func (f *FocusIndicator) Reset() {
	f.height = 0
	f.focused = false
}

// SetFocused toggles the focused styling.
func (f *FocusIndicator) SetFocused(focused bool) { f.focused = focused }

// View renders the strip.
func (f *FocusIndicator) View() string {
	if f.height <= 0 {
		return ""
	}
	ch := "│"
	if f.focused {
		ch = "┃"
	}
	rows := make([]string, f.height)
	for i := range rows {
		rows[i] = ch
	}
	return f.style.Render(strings.Join(rows, "\n"))
}

// ProgressIndicator is the indeterminate spinner shown while a code cell is
// running.
type ProgressIndicator struct {
	sp      spinner.Model
	visible bool
}

// NewProgressIndicator creates a hidden spinner.
func NewProgressIndicator() *ProgressIndicator {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return &ProgressIndicator{sp: sp}
}

// SetVisible shows or hides the spinner.
func (p *ProgressIndicator) SetVisible(v bool) { p.visible = v }

// Visible reports whether the spinner is shown.
func (p *ProgressIndicator) Visible() bool { return p.visible }

// Tick returns the command that keeps the spinner animating.
func (p *ProgressIndicator) Tick() tea.Cmd { return p.sp.Tick }

// Update routes a message to the spinner.
func (p *ProgressIndicator) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.sp, cmd = p.sp.Update(msg)
	return cmd
}

// View renders the spinner, or nothing while hidden.
func (p *ProgressIndicator) View() string {
	if !p.visible {
		return ""
	}
	return p.sp.View()
}

// InsertBar is the between-cell insertion affordance under a code cell. Its
// vertical offset follows the bound cell's layout.
type InsertBar struct {
	Toolbar
	offset int
}

// NewInsertBar creates an empty insert bar.
func NewInsertBar() *InsertBar {
	b := &InsertBar{}
	b.Toolbar = *NewToolbar()
	return b
}

// SetOffset records the vertical offset in rows.
func (b *InsertBar) SetOffset(offset int) { b.offset = offset }

// Offset returns the vertical offset.
func (b *InsertBar) Offset() int { return b.offset }
