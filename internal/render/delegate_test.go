package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nerdbook/internal/config"
	"nerdbook/internal/notebook"
)

func TestHeightCountsSourcePaddingAndOutputs(t *testing.T) {
	d := NewDelegate(config.Default())
	cell := notebook.NewCell(notebook.CodeCell, "a\nb\nc")

	// 3 source lines + 2 padding + 1 toolbar row.
	assert.Equal(t, 6, d.Height(cell))

	cell.AppendOutput(notebook.Output{Text: "one\ntwo"})
	assert.Equal(t, 8, d.Height(cell))
}

func TestHeightScalesWithLineHeight(t *testing.T) {
	cfg := config.Default()
	cfg.UI.LineHeight = 2
	d := NewDelegate(cfg)
	cell := notebook.NewCell(notebook.MarkupCell, "hi")

	assert.Equal(t, 8, d.Height(cell))
}

func TestHasDynamicHeight(t *testing.T) {
	d := NewDelegate(config.Default())

	md := notebook.NewCell(notebook.MarkupCell, "# x")
	assert.False(t, d.HasDynamicHeight(md))

	code := notebook.NewCell(notebook.CodeCell, "x := 1")
	assert.False(t, d.HasDynamicHeight(code))

	code.SetRunState(notebook.RunRunning)
	assert.True(t, d.HasDynamicHeight(code))

	code.SetRunState(notebook.RunSuccess)
	assert.False(t, d.HasDynamicHeight(code))

	code.AppendOutput(notebook.Output{Text: "out"})
	assert.True(t, d.HasDynamicHeight(code))
}

func TestTemplateIDRoutesByKind(t *testing.T) {
	d := NewDelegate(config.Default())
	assert.Equal(t, CodeTemplateID, d.TemplateID(notebook.NewCell(notebook.CodeCell, "")))
	assert.Equal(t, MarkupTemplateID, d.TemplateID(notebook.NewCell(notebook.MarkupCell, "")))
}

func TestFormatExecutionOrder(t *testing.T) {
	assert.Equal(t, "[   ]", FormatExecutionOrder(nil, true))
	three := 3
	assert.Equal(t, "[ 3 ]", FormatExecutionOrder(&three, true))
	assert.Equal(t, "[   ]", FormatExecutionOrder(&three, false))
}
