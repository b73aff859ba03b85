package virtlist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerdbook/internal/config"
	"nerdbook/internal/ctxkeys"
	"nerdbook/internal/menus"
	"nerdbook/internal/notebook"
	"nerdbook/internal/render"
)

type nopEditor struct{ doc *notebook.Document }

func (n *nopEditor) Document() *notebook.Document { return n.doc }
func (n *nopEditor) ExecuteCell(*notebook.Cell)   {}
func (n *nopEditor) CancelCell(*notebook.Cell)    {}
func (n *nopEditor) FocusCell(*notebook.Cell)     {}

func newEngine(t *testing.T, cellCount, viewHeight int) (*Engine, *render.Renderer, *notebook.Document) {
	t.Helper()
	doc := notebook.NewDocument()
	for i := 0; i < cellCount; i++ {
		kind := notebook.CodeCell
		if i%2 == 1 {
			kind = notebook.MarkupCell
		}
		doc.Append(notebook.NewCell(kind, fmt.Sprintf("line a %d\nline b", i)))
	}
	cfg := config.Default()
	keys := ctxkeys.NewService()
	r := render.NewRenderer(doc, cfg, keys, menus.NewService(keys), &nopEditor{doc: doc}, 60)
	e := New(doc, r, render.NewDelegate(cfg), viewHeight)
	return e, r, doc
}

func TestOnlyWindowCellsAreBound(t *testing.T) {
	// Each cell is 5 rows (2 source + 2 padding + 1 toolbar).
	e, r, doc := newEngine(t, 40, 10)
	require.NoError(t, e.Refresh())

	assert.Len(t, e.VisibleCells(), 2)
	assert.Len(t, r.Registry().LiveScopes(), 2)
	// Only the code cell registers a live editor.
	assert.Equal(t, []string{doc.CellAt(0).ID()}, r.Registry().LiveEditors())
}

func TestScrollChurnLeavesNoOrphans(t *testing.T) {
	e, r, doc := newEngine(t, 40, 15)
	require.NoError(t, e.Refresh())

	for top := 0; top < e.ContentHeight(); top += 7 {
		require.NoError(t, e.ScrollTo(top))

		visible := map[string]bool{}
		for _, c := range e.VisibleCells() {
			visible[c.ID()] = true
		}
		for _, id := range r.Registry().LiveScopes() {
			assert.True(t, visible[id], "scope for off-window cell %s", id)
		}
	}

	require.NoError(t, e.ScrollTo(0))
	assert.Empty(t, r.Registry().Orphans(doc))
}

func TestTemplatesAreRecycledNotRecreated(t *testing.T) {
	e, _, _ := newEngine(t, 40, 10)
	require.NoError(t, e.Refresh())

	// Scroll through the whole document; the pool should stay bounded by
	// the window size, not grow with the document.
	for top := 0; top < e.ContentHeight(); top += 5 {
		require.NoError(t, e.ScrollTo(top))
	}

	total := len(e.VisibleCells())
	for _, n := range e.PooledTemplates() {
		total += n
	}
	assert.LessOrEqual(t, total, 8, "template count should track the window, got %d", total)
}

func TestRemovedCellIsUnboundOnRefresh(t *testing.T) {
	e, r, doc := newEngine(t, 4, 100)
	require.NoError(t, e.Refresh())
	require.Len(t, e.VisibleCells(), 4)

	victim := doc.CellAt(0)
	doc.Remove(victim)
	require.NoError(t, e.Refresh())

	assert.NotContains(t, r.Registry().LiveScopes(), victim.ID())
	assert.Empty(t, r.Registry().Orphans(doc))
}

func TestLayoutSyncsToolbarOffset(t *testing.T) {
	e, _, doc := newEngine(t, 4, 100)
	require.NoError(t, e.Refresh())

	// Cell heights are 5 rows each; the second cell sits at offset 5.
	second := doc.CellAt(1)
	assert.Equal(t, 5, second.Layout().ToolbarOffset)

	require.NoError(t, e.ScrollTo(3))
	assert.Equal(t, 2, second.Layout().ToolbarOffset)
}

func TestDisposeRetiresEverything(t *testing.T) {
	e, r, doc := newEngine(t, 10, 20)
	require.NoError(t, e.Refresh())

	e.Dispose()
	assert.Empty(t, r.Registry().LiveScopes())
	assert.Empty(t, r.Registry().LiveEditors())
	assert.Empty(t, e.VisibleCells())
	assert.Empty(t, r.Registry().Orphans(doc))
}
