// Package mirror replaces selected subdirectories of a local directory with freshly built
// copies. Everything else in the mirror root is left alone.
package mirror

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
)

// Result records what Sync did.
type Result struct {
	// Replaced lists the subdirectories copied from the source.
	Replaced []string
	// Removed lists the subdirectories deleted because the source has none.
	Removed []string
	// Files is the number of files copied.
	Files int
}

// Sync deletes mirrorRoot/<subdir> and copies srcRoot/<subdir> in its place, for each
// subdir. A subdir missing from srcRoot leaves the mirror without it.
func Sync(srcRoot, mirrorRoot string, subdirs ...string) (*Result, error) {
	res := &Result{}
	for _, sub := range subdirs {
		if err := validSubdir(sub); err != nil {
			return nil, err
		}
		src := filepath.Join(srcRoot, sub)
		dst := filepath.Join(mirrorRoot, sub)

		if err := removeExisting(dst); err != nil {
			return nil, err
		}

		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			logging.Debug("mirror source missing, left removed", logging.Path(src))
			res.Removed = append(res.Removed, sub)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat source %q: %w", src, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %q is not a directory", src)
		}

		n, err := copyDir(src, dst)
		if err != nil {
			return nil, err
		}
		res.Files += n
		res.Replaced = append(res.Replaced, sub)
	}

	logging.Info("mirrored output",
		logging.Path(mirrorRoot),
		logging.Count(res.Files),
	)
	return res, nil
}

func validSubdir(sub string) error {
	clean := filepath.Clean(sub)
	if sub == "" || clean == "." || filepath.IsAbs(sub) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid mirror subdirectory %q", sub)
	}
	return nil
}

// removeExisting removes a file, symlink, or directory at the given path.
// Uses os.Lstat so a symlink is removed as an entry, never followed.
// Returns nil if the path doesn't exist.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove directory %q: %w", path, err)
		}
	} else if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}

	logging.Debug("removed mirror entry", logging.Path(path))
	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is inside the build output
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G302 G304 - preserving source permissions, dst is inside the mirror root
	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	return dstFile.Close()
}

// copyDir recursively copies src to dst and returns the number of files copied.
// Symlinks are recreated, not followed.
func copyDir(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("failed to stat source %q: %w", src, err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to create destination directory %q: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("failed to read source directory %q: %w", src, err)
	}

	count := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Lstat(srcPath)
		if err != nil {
			return 0, fmt.Errorf("failed to lstat %q: %w", srcPath, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return 0, fmt.Errorf("failed to read symlink %q: %w", srcPath, err)
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return 0, fmt.Errorf("failed to create symlink %q: %w", dstPath, err)
			}
			count++
		case info.IsDir():
			n, err := copyDir(srcPath, dstPath)
			if err != nil {
				return 0, err
			}
			count += n
		default:
			if err := copyFile(srcPath, dstPath, info.Mode().Perm()); err != nil {
				return 0, err
			}
			count++
		}
	}
	return count, nil
}
