package packaging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// ManifestPath returns the location of a provider's manifest. It sits next to the bundle,
// outside the provider directory, so it never ends up in an archive.
func ManifestPath(downloadRoot string, p model.Provider) string {
	return filepath.Join(downloadRoot, p.String()+".manifest.json")
}

// SaveManifest writes w as indented JSON to ManifestPath.
func SaveManifest(w *WrittenTree, downloadRoot string) error {
	path := ManifestPath(downloadRoot, w.Provider)
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return &Error{Provider: w.Provider, Op: "manifest", Err: fmt.Errorf("failed to serialize manifest: %w", err)}
	}
	if err := os.MkdirAll(downloadRoot, 0o755); err != nil {
		return &Error{Provider: w.Provider, Op: "manifest", Path: downloadRoot, Err: err}
	}
	// #nosec G306 - manifests are served alongside archives
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return &Error{Provider: w.Provider, Op: "manifest", Path: path, Err: err}
	}
	return nil
}

// LoadManifest reads the manifest written by SaveManifest. The returned tree has no Root.
func LoadManifest(downloadRoot string, p model.Provider) (*WrittenTree, error) {
	path := ManifestPath(downloadRoot, p)
	// #nosec G304 - path is built from a validated provider name
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Provider: p, Op: "manifest", Path: path, Err: err}
	}
	var w WrittenTree
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &Error{Provider: p, Op: "manifest", Path: path, Err: fmt.Errorf("failed to parse manifest: %w", err)}
	}
	if w.Provider != p {
		return nil, &Error{Provider: p, Op: "manifest", Path: path, Err: fmt.Errorf("manifest is for provider %q", w.Provider)}
	}
	return &w, nil
}
