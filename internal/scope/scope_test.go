package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisposeRunsInReverseOrder(t *testing.T) {
	s := New()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.Add(func() { order = append(order, i) })
	}
	s.Dispose()
	assert.Equal(t, []int{2, 1, 0}, order)
}

func TestDisposeIsIdempotent(t *testing.T) {
	s := New()
	calls := 0
	s.Add(func() { calls++ })
	s.Dispose()
	s.Dispose()
	assert.Equal(t, 1, calls)
	assert.True(t, s.IsDisposed())
}

func TestAddAfterDisposeReleasesImmediately(t *testing.T) {
	s := New()
	s.Dispose()
	called := false
	s.Add(func() { called = true })
	assert.True(t, called)
	assert.Equal(t, 0, s.Len())
}

func TestPanickingReleaseDoesNotStopTeardown(t *testing.T) {
	s := New()
	survived := false
	s.Add(func() { survived = true })
	s.Add(func() { panic("boom") })
	assert.NotPanics(t, s.Dispose)
	assert.True(t, survived)
}

func TestNilReleaseIgnored(t *testing.T) {
	s := New()
	s.Add(nil)
	assert.Equal(t, 0, s.Len())
	assert.NotPanics(t, s.Dispose)
}
