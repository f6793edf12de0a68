package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsmatch/internal/errors"
)

func TestFileWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("v1"), 0600))

	var calls atomic.Int32
	w := New([]string{resume}, 100*time.Millisecond, func() { calls.Add(1) }, errors.NewNopLogger())
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	assert.True(t, w.IsRunning())

	time.Sleep(20 * time.Millisecond)
	for i := range 3 {
		require.NoError(t, os.WriteFile(resume, []byte("version "+string(rune('a'+i))), 0600))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFileWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("v1"), 0600))

	var calls atomic.Int32
	w := New([]string{resume}, 20*time.Millisecond, func() { calls.Add(1) }, errors.NewNopLogger())
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestFileWatcherStartStop(t *testing.T) {
	dir := t.TempDir()
	jd := filepath.Join(dir, "jd.md")
	w := New([]string{jd, ""}, 0, func() {}, errors.NewNopLogger())

	assert.Equal(t, []string{jd}, w.Files())
	assert.Equal(t, defaultDebounce, w.debounceDelay)

	require.NoError(t, w.Start())
	require.Error(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

func TestFileWatcherFailsWithoutWatchablePaths(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "resume.txt")
	w := New([]string{missing}, 0, func() {}, errors.NewNopLogger())
	require.Error(t, w.Start())
	assert.False(t, w.IsRunning())
}
