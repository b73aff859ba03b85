package render

import (
	"strings"

	"nerdbook/internal/config"
	"nerdbook/internal/notebook"
)

// Delegate answers the virtualization engine's sizing and routing queries.
// All three queries are pure functions of cell state plus the ambient line
// metrics; they run on every layout pass and must stay cheap.
type Delegate struct {
	lineHeight int
}

// NewDelegate creates a delegate using the configured line metrics.
func NewDelegate(cfg config.Config) *Delegate {
	lh := cfg.UI.LineHeight
	if lh < 1 {
		lh = 1
	}
	return &Delegate{lineHeight: lh}
}

// Height reports the cell's current pixel-row height: source lines plus the
// fixed editor padding, the toolbar row, and any rendered outputs.
func (d *Delegate) Height(cell *notebook.Cell) int {
	rows := countLines(cell.Source())
	rows += config.EditorPaddingTop + config.EditorPaddingBottom
	rows++ // toolbar row
	if cell.Kind() == notebook.CodeCell {
		for _, out := range cell.Outputs() {
			rows += countLines(out.Text)
		}
	}
	return rows * d.lineHeight
}

// HasDynamicHeight reports whether the cell's height depends on
// runtime-rendered content the engine cannot predict from the source alone.
func (d *Delegate) HasDynamicHeight(cell *notebook.Cell) bool {
	if cell.Kind() != notebook.CodeCell {
		return false
	}
	return cell.RunState() == notebook.RunRunning || len(cell.Outputs()) > 0
}

// TemplateID routes a cell to the template pool for its kind.
func (d *Delegate) TemplateID(cell *notebook.Cell) string {
	if cell.Kind() == notebook.MarkupCell {
		return MarkupTemplateID
	}
	return CodeTemplateID
}

func countLines(s string) int {
	if s == "" {
		return 1
	}
	return strings.Count(s, "\n") + 1
}
