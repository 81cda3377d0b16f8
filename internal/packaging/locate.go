package packaging

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Locate resolves a download request to an archive on disk. An empty kind selects the
// provider bundle. The returned error wraps fs.ErrNotExist when no archive exists.
func Locate(downloadRoot string, p model.Provider, kind model.Kind, id string) (string, error) {
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider %q", p)
	}

	var path string
	switch kind {
	case "":
		path = BundlePath(downloadRoot, p)
	case model.KindCommand, model.KindSkill:
		if err := model.ValidateID(id); err != nil {
			return "", err
		}
		path = EntryPath(downloadRoot, p, kind, id)
	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("archive for %s: %w", p, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("archive path %s is a directory", path)
	}
	return path, nil
}

// Unpack extracts every file of a zip archive under dest and returns the slash paths
// written, in archive order. Entries that would escape dest are rejected.
func Unpack(archivePath, dest string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer func() { _ = r.Close() }()

	var written []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := model.ValidateArtifactPath(f.Name); err != nil {
			return nil, fmt.Errorf("unsafe archive entry: %w", err)
		}
		if err := unpackFile(f, filepath.Join(dest, filepath.FromSlash(f.Name))); err != nil {
			return nil, err
		}
		written = append(written, f.Name)
	}
	return written, nil
}

func unpackFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	// #nosec G304 - target is validated to stay under dest
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	// #nosec G110 - archives are produced by this tool
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}
