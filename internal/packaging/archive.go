package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// archiveTime is stamped on every zip entry so identical trees give identical archives.
var archiveTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const archiveMode os.FileMode = 0o644

// ArchiveHandle describes one written archive.
type ArchiveHandle struct {
	Provider model.Provider `json:"provider"`
	// Ref is the single entry in the archive; zero for a whole-provider bundle.
	Ref     model.EntryRef `json:"ref"`
	Path    string         `json:"path"`
	Entries int            `json:"entries"`
	Size    int64          `json:"size"`
	SHA256  string         `json:"sha256"`
}

// IsBundle reports whether the archive holds the whole provider tree.
func (h ArchiveHandle) IsBundle() bool {
	return h.Ref == model.EntryRef{}
}

// Archive writes downloadRoot/<provider>.zip from the files of w.
func Archive(w *WrittenTree, downloadRoot string) (*ArchiveHandle, error) {
	if len(w.Entries) == 0 {
		return nil, &Error{Provider: w.Provider, Op: "archive", Err: ErrEmptyTree}
	}

	dest := BundlePath(downloadRoot, w.Provider)
	h, err := writeZip(dest, w.Root, w.Paths())
	if err != nil {
		return nil, &Error{Provider: w.Provider, Op: "archive", Path: dest, Err: err}
	}
	h.Provider = w.Provider

	logging.Debug("wrote bundle",
		logging.Provider(w.Provider.String()),
		logging.Path(dest),
		logging.Count(h.Entries),
	)
	return h, nil
}

// ExtractEntries writes one archive per command and skill of w at
// downloadRoot/<provider>/<kind>/<id>.zip. Previous per-entry archives for the provider
// are removed first.
func ExtractEntries(w *WrittenTree, downloadRoot string) ([]ArchiveHandle, error) {
	dir := filepath.Join(downloadRoot, w.Provider.String())
	if err := os.RemoveAll(dir); err != nil {
		return nil, &Error{Provider: w.Provider, Op: "extract", Path: dir, Err: err}
	}

	owners := w.Owners()
	handles := make([]ArchiveHandle, 0, len(owners))
	for _, ref := range owners {
		entries := w.EntriesFor(ref)
		paths := make([]string, len(entries))
		for i, e := range entries {
			paths[i] = e.Path
		}

		dest := EntryPath(downloadRoot, w.Provider, ref.Kind, ref.ID)
		h, err := writeZip(dest, w.Root, paths)
		if err != nil {
			return nil, &Error{Provider: w.Provider, Op: "extract", Path: dest, Err: err}
		}
		h.Provider = w.Provider
		h.Ref = ref
		handles = append(handles, *h)

		logging.Debug("wrote entry archive",
			logging.Provider(w.Provider.String()),
			logging.Kind(ref.Kind.String()),
			logging.Entry(ref.ID),
			logging.Path(dest),
		)
	}

	logging.Info("wrote entry archives",
		logging.Provider(w.Provider.String()),
		logging.Count(len(handles)),
	)
	return handles, nil
}

// BundlePath returns the location of a provider's bundle archive.
func BundlePath(downloadRoot string, p model.Provider) string {
	return filepath.Join(downloadRoot, p.String()+".zip")
}

// EntryPath returns the location of a single-entry archive.
func EntryPath(downloadRoot string, p model.Provider, kind model.Kind, id string) string {
	return filepath.Join(downloadRoot, p.String(), kind.String(), id+".zip")
}

// writeZip archives the given slash paths, read from root, into dest. Entries keep the
// given order and carry a fixed time and mode. The archive is written to a temporary file
// and renamed into place.
func writeZip(dest, root string, paths []string) (*ArchiveHandle, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*.zip")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	sum := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(tmp, sum)}
	zw := zip.NewWriter(counter)

	for _, p := range paths {
		if err := addZipEntry(zw, root, p); err != nil {
			_ = tmp.Close()
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("failed to finish zip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	// #nosec G302 - archives are meant to be world-readable
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return nil, err
	}

	return &ArchiveHandle{
		Path:    dest,
		Entries: len(paths),
		Size:    counter.n,
		SHA256:  hex.EncodeToString(sum.Sum(nil)),
	}, nil
}

func addZipEntry(zw *zip.Writer, root, p string) error {
	// #nosec G304 - p comes from a validated artifact tree under root
	src, err := os.Open(filepath.Join(root, filepath.FromSlash(p)))
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	hdr := &zip.FileHeader{
		Name:     p,
		Method:   zip.Deflate,
		Modified: archiveTime,
	}
	hdr.SetMode(archiveMode)

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", p, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to compress %s: %w", p, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
