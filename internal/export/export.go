// Package export renders a notebook to static styled terminal text, outside
// the interactive UI. Markdown cells go through the same glamour pipeline the
// live view uses; code cells are syntax highlighted with chroma since no
// editor widget is involved.
package export

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"

	"nerdbook/internal/config"
	"nerdbook/internal/notebook"
	"nerdbook/internal/render"
)

// styleFor maps the UI theme to a chroma style name.
func styleFor(theme string) string {
	if theme == "light" {
		return "github"
	}
	return "monokai"
}

// Renderer converts documents to styled terminal text.
type Renderer struct {
	md    *glamour.TermRenderer
	style string
	width int
}

// New creates an export renderer wrapping at width columns.
func New(cfg config.Config, width int) (*Renderer, error) {
	if width <= 0 {
		width = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Renderer{md: md, style: styleFor(cfg.UI.Theme), width: width}, nil
}

// Render returns the whole document as styled text, cells top to bottom.
func (r *Renderer) Render(doc *notebook.Document) (string, error) {
	var b strings.Builder
	tracked := doc.Metadata().TrackExecutionOrder

	for i, cell := range doc.Cells() {
		if i > 0 {
			b.WriteString("\n")
		}
		switch cell.Kind() {
		case notebook.MarkupCell:
			out, err := r.md.Render(cell.Source())
			if err != nil {
				return "", fmt.Errorf("render cell %d: %w", i, err)
			}
			b.WriteString(out)

		case notebook.CodeCell:
			b.WriteString(render.FormatExecutionOrder(cell.Metadata().ExecutionOrder, tracked))
			b.WriteString("\n")
			if err := quick.Highlight(&b, cell.Source(), "go", "terminal256", r.style); err != nil {
				return "", fmt.Errorf("highlight cell %d: %w", i, err)
			}
			b.WriteString("\n")
			for _, out := range cell.Outputs() {
				b.WriteString(out.Text)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}
