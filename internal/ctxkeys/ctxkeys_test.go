package ctxkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedValueShadowsParent(t *testing.T) {
	svc := NewService()
	NewKey(svc.Root(), "mode", "global")
	child := svc.Root().NewScoped()
	NewKey(child, "mode", "scoped")

	v, ok := child.Value("mode")
	require.True(t, ok)
	assert.Equal(t, "scoped", v)

	v, ok = svc.Root().Value("mode")
	require.True(t, ok)
	assert.Equal(t, "global", v)
}

func TestLookupWalksToRoot(t *testing.T) {
	svc := NewService()
	NewKey(svc.Root(), "theme", "dark")
	child := svc.Root().NewScoped().NewScoped()

	v, ok := child.Value("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestChangedFiresOnlyOnRealChange(t *testing.T) {
	svc := NewService()
	var ticks []string
	unsub := svc.Changed.Subscribe(func(name string) { ticks = append(ticks, name) })
	defer unsub()

	k := NewKey(svc.Root(), "runState", "idle")
	k.Set("running")
	k.Set("running") // no-op
	k.Set("success")

	assert.Equal(t, []string{"runState", "runState", "runState"}, ticks)
}

func TestDisposedContextIsInert(t *testing.T) {
	svc := NewService()
	child := svc.Root().NewScoped()
	k := NewKey(child, "editable", true)
	child.Dispose()

	_, ok := child.Value("editable")
	assert.False(t, ok)

	fired := false
	unsub := svc.Changed.Subscribe(func(string) { fired = true })
	defer unsub()
	k.Set(false)
	assert.False(t, fired)

	assert.NotPanics(t, child.Dispose)
}

func TestTypedGet(t *testing.T) {
	svc := NewService()
	k := NewKey(svc.Root(), "count", 3)
	v, ok := k.Get()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	k.Reset()
	_, ok = k.Get()
	assert.False(t, ok)
}
