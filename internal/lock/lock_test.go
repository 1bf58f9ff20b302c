package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLockAcquiresWhenFree(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	ok, err := l.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.Unlock())
}

func TestTryLockFailsWhenHeld(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer first.Unlock()

	second := New(dir)
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnlockIsSafeWhenNotLocked(t *testing.T) {
	l := New(t.TempDir())
	assert.NoError(t, l.Unlock())
}
