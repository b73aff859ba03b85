package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCellDefaults(t *testing.T) {
	code := NewCell(CodeCell, "x := 1")
	assert.NotEmpty(t, code.ID())
	assert.True(t, code.Metadata().Editable)
	assert.True(t, code.Metadata().Runnable)
	assert.Equal(t, RunIdle, code.RunState())

	md := NewCell(MarkupCell, "# hi")
	assert.False(t, md.Metadata().Runnable)
	assert.Equal(t, Preview, md.EditState())
	assert.NotEqual(t, code.ID(), md.ID())
}

func TestSettersFireOnlyOnChange(t *testing.T) {
	cell := NewCell(CodeCell, "")
	fired := 0
	unsub := cell.RunStateChanged.Subscribe(func(RunState) { fired++ })
	defer unsub()

	cell.SetRunState(RunRunning)
	cell.SetRunState(RunRunning)
	cell.SetRunState(RunSuccess)
	assert.Equal(t, 2, fired)
}

func TestSetExecutionOrder(t *testing.T) {
	cell := NewCell(CodeCell, "")
	cell.SetExecutionOrder(4)
	require.NotNil(t, cell.Metadata().ExecutionOrder)
	assert.Equal(t, 4, *cell.Metadata().ExecutionOrder)

	cell.SetExecutionOrder(-1)
	assert.Nil(t, cell.Metadata().ExecutionOrder)
}

func TestDocumentInsertAfter(t *testing.T) {
	doc := NewDocument()
	a := NewCell(CodeCell, "a")
	b := NewCell(CodeCell, "b")
	c := NewCell(MarkupCell, "c")
	doc.Append(a)
	doc.Append(b)

	require.NoError(t, doc.InsertAfter(0, c))
	assert.Equal(t, []*Cell{a, c, b}, doc.Cells())

	front := NewCell(MarkupCell, "front")
	require.NoError(t, doc.InsertAfter(-1, front))
	assert.Same(t, front, doc.CellAt(0))

	assert.Error(t, doc.InsertAfter(99, NewCell(CodeCell, "")))
}

func TestDocumentRemove(t *testing.T) {
	doc := NewDocument()
	a := NewCell(CodeCell, "a")
	doc.Append(a)

	n := 0
	unsub := doc.CellsChanged.Subscribe(func(l int) { n = l })
	defer unsub()

	doc.Remove(a)
	assert.Equal(t, 0, n)
	assert.Equal(t, -1, doc.IndexOf(a))

	// Removing again is a no-op.
	doc.Remove(a)
	assert.Equal(t, 0, doc.Len())
}
