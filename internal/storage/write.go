package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// newFilePerm is the mode for files that did not exist yet, before the umask.
const newFilePerm = 0o666

const tempPrefix = ".fusendo-tmp-"

// WriteFile writes content to path, replacing any existing file. Parent
// directories are not created.
//
// Symlinks are followed, so the file they point to is updated and the link
// stays. An existing file keeps its mode; a new file gets 0666 under the
// umask. The write goes through a temp file renamed over the target, so a
// failure never leaves a partial or new file behind. Files with more than
// one hard link are rewritten in place instead, keeping the links intact.
func WriteFile(path string, content []byte) error {
	if path == "" {
		return fmt.Errorf("storage: %w", &os.PathError{Op: "open", Path: path, Err: fs.ErrNotExist})
	}
	target, err := resolveTarget(path)
	if err != nil {
		return fmt.Errorf("storage: resolve: %w", targetError("open", path, err))
	}

	info, err := os.Stat(target)
	switch {
	case err == nil && !info.Mode().IsRegular():
		return fmt.Errorf("storage: %w", &os.PathError{Op: "write", Path: path, Err: errNotRegular})
	case err == nil && linkCount(info) > 1:
		return writeInPlace(path, target, content)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("storage: stat: %w", targetError("stat", path, err))
	}

	return writeReplace(path, target, content, info)
}

var errNotRegular = errors.New("not a regular file")

// resolveTarget follows symlinks at path. A dangling link resolves to the
// file it names, which is then created.
func resolveTarget(path string) (string, error) {
	li, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, nil
	}
	if err != nil {
		return "", err
	}
	if li.Mode()&os.ModeSymlink == 0 {
		return path, nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	dest, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(path), dest)
	}
	return dest, nil
}

// writeReplace writes to a temp file next to target and renames it over
// target. existing is the target's FileInfo, or nil for a new file.
func writeReplace(path, target string, content []byte, existing os.FileInfo) error {
	tmpName := filepath.Join(filepath.Dir(target), tempPrefix+uuid.NewString())
	tmp, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, newFilePerm)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", targetError("open", path, err))
	}

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if existing != nil {
		if err := tmp.Chmod(existing.Mode().Perm()); err != nil {
			return fmt.Errorf("storage: chmod temp: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("storage: rename: %w", targetError("write", path, err))
	}
	success = true
	return nil
}

func writeInPlace(path, target string, content []byte) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("storage: open: %w", targetError("open", path, err))
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: write: %w", targetError("write", path, err))
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: fsync: %w", targetError("write", path, err))
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("storage: close: %w", targetError("write", path, err))
	}
	return nil
}

// targetError reports err against the caller's path rather than the temp
// file name, keeping the OS cause.
func targetError(op, path string, err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return &os.PathError{Op: op, Path: path, Err: pe.Err}
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return &os.PathError{Op: op, Path: path, Err: le.Err}
	}
	return err
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
