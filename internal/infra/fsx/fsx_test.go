package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_ByteExactAndNoTempLeft(t *testing.T) {
	fsys := afero.NewMemMapFs()
	payload := []byte{0x4d, 0x43, 0x00, 0xff, 0x10, '\n', 0x00}
	require.NoError(t, fsys.MkdirAll("/src", 0o755))
	require.NoError(t, fsys.MkdirAll("/dst", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/src/a.mcd", payload, 0o600))

	n, err := CopyFile(fsys, "/src/a.mcd", "/dst/A (USA).srm", false)
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), n)

	got, err := afero.ReadFile(fsys, "/dst/A (USA).srm")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	fi, err := fsys.Stat("/dst/A (USA).srm")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	assertNoTemp(t, fsys, "/dst")
}

func TestCopyFile_OverwritePolicy(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.mcd", []byte("new"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/dst/a.srm", []byte("old"), 0o644))

	// 不允许覆盖：返回 os.ErrExist，目标保持原样。
	_, err := CopyFile(fsys, "/src/a.mcd", "/dst/a.srm", false)
	require.ErrorIs(t, err, os.ErrExist)
	got, _ := afero.ReadFile(fsys, "/dst/a.srm")
	assert.Equal(t, "old", string(got))

	// 默认策略：覆盖。
	_, err = CopyFile(fsys, "/src/a.mcd", "/dst/a.srm", true)
	require.NoError(t, err)
	got, _ = afero.ReadFile(fsys, "/dst/a.srm")
	assert.Equal(t, "new", string(got))
}

func TestCopyFile_TargetConflictDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.mcd", []byte("x"), 0o644))
	require.NoError(t, fsys.MkdirAll("/dst/a.srm", 0o755))

	// 目标路径是目录：即使允许覆盖，也应返回 PathTypeConflictError。
	_, err := CopyFile(fsys, "/src/a.mcd", "/dst/a.srm", true)
	require.Error(t, err)
	assert.True(t, IsPathTypeConflict(err), "实际：%T %v", err, err)
}

func TestCopyFile_MissingDestDir(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.mcd")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := CopyFile(afero.NewOsFs(), src, filepath.Join(root, "missing", "a.srm"), true)
	require.Error(t, err)

	// 不创建目录。
	_, statErr := os.Stat(filepath.Join(root, "missing"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyFile_MissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/dst", 0o755))

	_, err := CopyFile(fsys, "/src/none.mcd", "/dst/a.srm", true)
	require.Error(t, err)
	assertNoTemp(t, fsys, "/dst")
}

func TestCopyFile_RenameFail_CleanupTemp(t *testing.T) {
	fsys := failingRenameFs{afero.NewMemMapFs()}
	require.NoError(t, afero.WriteFile(fsys, "/src/a.mcd", []byte("x"), 0o644))
	require.NoError(t, fsys.MkdirAll("/dst", 0o755))

	_, err := CopyFile(fsys, "/src/a.mcd", "/dst/a.srm", true)
	require.ErrorIs(t, err, os.ErrPermission)

	entries, err := afero.ReadDir(fsys, "/dst")
	require.NoError(t, err)
	assert.Empty(t, entries, "不应留下临时文件或最终文件")
}

func TestWriteFileAtomicReplace_CreatesDirAndReplaces(t *testing.T) {
	dir := t.TempDir()
	fsys := afero.NewOsFs()
	out := filepath.Join(dir, "reports")

	require.NoError(t, WriteFileAtomicReplace(fsys, out, "report.json", []byte("one")))
	require.NoError(t, WriteFileAtomicReplace(fsys, out, "report.json", []byte("two")))

	b, err := os.ReadFile(filepath.Join(out, "report.json"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	assertNoTemp(t, fsys, out)
}

type failingRenameFs struct{ afero.Fs }

func (failingRenameFs) Rename(oldname, newname string) error { return os.ErrPermission }

func assertNoTemp(t *testing.T, fsys afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fsys, dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "临时文件未清理：%q", e.Name())
	}
}
