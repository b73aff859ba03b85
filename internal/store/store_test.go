package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerdbook/internal/notebook"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	doc := notebook.NewDocument()
	doc.UpdateMetadata(func(md *notebook.DocumentMetadata) {
		md.TrackExecutionOrder = true
	})

	code := notebook.NewCell(notebook.CodeCell, `fmt.Println("x")`)
	md := notebook.NewCell(notebook.MarkupCell, "# Title\n\nBody.")
	md.UpdateMetadata(func(m *notebook.CellMetadata) { m.Editable = false })
	doc.Append(code)
	doc.Append(md)

	path := filepath.Join(t.TempDir(), "test.nb.yaml")
	require.NoError(t, Save(path, doc))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	c0 := loaded.CellAt(0)
	assert.Equal(t, notebook.CodeCell, c0.Kind())
	assert.Equal(t, `fmt.Println("x")`, c0.Source())
	assert.True(t, c0.Metadata().Runnable)

	c1 := loaded.CellAt(1)
	assert.Equal(t, notebook.MarkupCell, c1.Kind())
	assert.False(t, c1.Metadata().Editable)

	assert.True(t, loaded.Metadata().TrackExecutionOrder)

	var sources []string
	for _, c := range loaded.Cells() {
		sources = append(sources, c.Source())
	}
	want := []string{`fmt.Println("x")`, "# Title\n\nBody."}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cells:\n  - kind: widget\n    source: x\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestExecutionStateIsNotPersisted(t *testing.T) {
	doc := notebook.NewDocument()
	code := notebook.NewCell(notebook.CodeCell, "1 + 1")
	code.SetExecutionOrder(7)
	code.AppendOutput(notebook.Output{Text: "2"})
	doc.Append(code)

	path := filepath.Join(t.TempDir(), "nb.yaml")
	require.NoError(t, Save(path, doc))

	loaded, err := Load(path)
	require.NoError(t, err)
	c := loaded.CellAt(0)
	assert.Nil(t, c.Metadata().ExecutionOrder)
	assert.Empty(t, c.Outputs())
}

func TestWatchReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.nb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cells: []\n"), 0o644))

	changed := make(chan struct{}, 8)
	stop, err := Watch(path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("cells: []\n# touched\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	// stop is idempotent.
	stop()
	assert.NotPanics(t, stop)
}
