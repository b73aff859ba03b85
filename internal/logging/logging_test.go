package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetForTest() {
	mu.Lock()
	root = nil
	loggers = map[Category]*zap.Logger{}
	mu.Unlock()
}

func TestGetBeforeInitializeIsNoop(t *testing.T) {
	resetForTest()
	l := Get(CategoryKernel)
	assert.NotPanics(t, func() { l.Info("dropped") })
}

func TestInitializeWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true))
	t.Cleanup(resetForTest)

	Get(CategoryRender).Info("hello")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, "nerdbook.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "render")
}
