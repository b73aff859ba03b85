package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerdbook/internal/config"
	"nerdbook/internal/notebook"
)

func TestRenderMixedDocument(t *testing.T) {
	doc := notebook.NewDocument()
	doc.Append(notebook.NewCell(notebook.MarkupCell, "# Heading\n\nSome text."))
	code := notebook.NewCell(notebook.CodeCell, `fmt.Println("out")`)
	code.SetExecutionOrder(2)
	code.AppendOutput(notebook.Output{Text: "out"})
	doc.Append(code)

	r, err := New(config.Default(), 80)
	require.NoError(t, err)

	got, err := r.Render(doc)
	require.NoError(t, err)

	assert.Contains(t, got, "Heading")
	assert.Contains(t, got, "[ 2 ]")
	assert.Contains(t, got, "out")
}

func TestUntrackedOrderRendersBlankLabel(t *testing.T) {
	doc := notebook.NewDocument()
	doc.UpdateMetadata(func(md *notebook.DocumentMetadata) {
		md.TrackExecutionOrder = false
	})
	code := notebook.NewCell(notebook.CodeCell, "x := 1")
	code.SetExecutionOrder(5)
	doc.Append(code)

	r, err := New(config.Default(), 80)
	require.NoError(t, err)

	got, err := r.Render(doc)
	require.NoError(t, err)
	assert.Contains(t, got, "[   ]")
	assert.NotContains(t, got, "[ 5 ]")
}
