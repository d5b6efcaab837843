package fsutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, WriteFile(path, []byte("x"), 0o644))
}

func TestFindFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.yxmd"))
	touch(t, filepath.Join(root, "a.yxmd"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub", "c.yxmd"))

	flat, err := FindFiles(root, "*.yxmd", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.yxmd"), filepath.Join(root, "b.yxmd")}, flat)

	deep, err := FindFiles(root, "*.yxmd", true)
	require.NoError(t, err)
	assert.Len(t, deep, 3)

	_, err = FindFiles(root, "[", false)
	assert.Error(t, err)

	_, err = FindFiles(filepath.Join(root, "absent"), "*", false)
	assert.Error(t, err)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.xml")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, WriteFile(path, []byte("<x/>"), 0o644))
		}()
	}
	wg.Wait()

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Dir(path)))
	assert.True(t, DirExists(filepath.Dir(path)))

	header, err := ReadFileHeader(path, 16)
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(header))
}

func TestCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "flow.yxmd")
	touch(t, target)
	link := filepath.Join(dir, "link.yxmd")
	require.NoError(t, os.Symlink(target, link))

	resolvedTarget, err := CanonicalPath(target)
	require.NoError(t, err)
	resolvedLink, err := CanonicalPath(link)
	require.NoError(t, err)
	assert.Equal(t, resolvedTarget, resolvedLink)

	missing, err := CanonicalPath(filepath.Join(dir, "later.yxmd"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(resolvedTarget), "later.yxmd"), missing)
}

func TestNameHelpers(t *testing.T) {
	assert.Equal(t, ".yxmd", GetExtension("in/Flow.YXMD"))
	assert.Equal(t, "flow", GetFileNameWithoutExt("in/flow.yxmd"))
}

func TestConfigDirs(t *testing.T) {
	t.Setenv("ETL_BRIDGE_DEV", "true")
	dir, err := GetConfigDir("etl-bridge")
	require.NoError(t, err)
	assert.Equal(t, "config", dir)
	assert.Equal(t, "config", GetSystemConfigDir("etl-bridge"))
}
