package fsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
// 上层可把它映射为 error_code=target_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CopyFile 把 src 逐字节复制到 dst，返回复制的字节数。
//
// 语义：
// - dst 所在目录必须已存在（不会创建任何目录）
// - 先写同目录临时文件并 Sync，再 rename 到 dst；失败时不留下临时文件
// - dst 已存在：overwrite=true 时覆盖；否则返回 os.ErrExist
// - dst 是目录或非普通文件：返回 PathTypeConflictError（无论 overwrite）
// - 权限位跟随 src
func CopyFile(fsys afero.Fs, src, dst string, overwrite bool) (int64, error) {
	dst = filepath.Clean(dst)
	if fi, err := fsys.Stat(dst); err == nil {
		if fi.IsDir() {
			return 0, &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
		}
		if !fi.Mode().IsRegular() {
			return 0, &PathTypeConflictError{Path: dst, Want: "regular file", Got: fi.Mode().Type().String()}
		}
		if !overwrite {
			return 0, errors.WithMessagef(os.ErrExist, "目标已存在 %q", dst)
		}
	} else if !os.IsNotExist(err) {
		return 0, err
	}

	in, err := fsys.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, &PathTypeConflictError{Path: src, Want: "file", Got: "dir"}
	}

	var n int64
	err = writeAtomic(fsys, filepath.Dir(dst), filepath.Base(dst), info.Mode().Perm(), func(w io.Writer) error {
		var e error
		n, e = io.Copy(w, in)
		return e
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// WriteFileAtomicReplace 在 dir 下原子写入 name 并覆盖同名文件；dir 不存在时创建。
// 用于 report 等内部产物。
func WriteFileAtomicReplace(fsys afero.Fs, dir, name string, data []byte) error {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeAtomic(fsys, dir, name, 0o644, func(w io.Writer) error {
		_, e := w.Write(data)
		return e
	})
}

func writeAtomic(fsys afero.Fs, dir, name string, perm os.FileMode, fill func(io.Writer) error) error {
	dst := filepath.Join(dir, name)

	// 创建同目录临时文件（前缀带 '.'，避免污染存档目录视图）。
	tmp, err := afero.TempFile(fsys, dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		// rename 成功后，不应删除最终文件。
		if !renamed {
			_ = fsys.Remove(tmpName)
		}
	}()

	if err := fill(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(tmpName, perm); err != nil {
		return err
	}

	if err := fsys.Rename(tmpName, dst); err != nil {
		return err
	}
	renamed = true

	// 目录 fsync：best-effort（不同平台/文件系统的语义差异很大）。
	_ = syncDirBestEffort(fsys, dir)
	return nil
}

func syncDirBestEffort(fsys afero.Fs, dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := fsys.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
