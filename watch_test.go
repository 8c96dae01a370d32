package noboiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	fw, err := WatchFiles([]string{path}, nil)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))

	select {
	case got := <-fw.Changed():
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestFileWatcherReportsRenameSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	fw, err := WatchFiles([]string{path}, nil)
	require.NoError(t, err)
	defer fw.Close()

	tmp := filepath.Join(dir, ".shader.wgsl.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		select {
		case got := <-fw.Changed():
			return got == path
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFileWatcherCoalesces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	fw, err := WatchFiles([]string{path}, nil)
	require.NoError(t, err)
	defer fw.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
	}
	require.Eventually(t, func() bool { return len(fw.Changed()) == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	_, err := WatchFiles([]string{filepath.Join(t.TempDir(), "missing", "a.wgsl")}, nil)
	assert.Error(t, err)
}

func TestFileWatcherClose(t *testing.T) {
	fw, err := WatchFiles([]string{filepath.Join(t.TempDir(), "a.wgsl")}, NopLogger())
	require.NoError(t, err)
	assert.NoError(t, fw.Close())
}
