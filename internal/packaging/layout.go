package packaging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// ErrOverlappingLayout is returned when provider trees and archives would share directories.
var ErrOverlappingLayout = errors.New("dist and downloads directories overlap")

// CheckLayout reports whether trees written under distDir and archives written under
// downloadRoot can coexist. Write replaces distDir/<provider> and ExtractEntries replaces
// downloadRoot/<provider>: the two roots must differ and neither may lie inside a provider
// subtree of the other. dist/downloads is fine.
func CheckLayout(distDir, downloadRoot string) error {
	dist, err := filepath.Abs(distDir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", distDir, err)
	}
	downloads, err := filepath.Abs(downloadRoot)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", downloadRoot, err)
	}

	if dist == downloads {
		return fmt.Errorf("%w: both are %s", ErrOverlappingLayout, dist)
	}
	for _, p := range model.AllProviders() {
		if within(downloads, filepath.Join(dist, p.String())) {
			return fmt.Errorf("%w: %s is inside the %s tree", ErrOverlappingLayout, downloads, p)
		}
		if within(dist, filepath.Join(downloads, p.String())) {
			return fmt.Errorf("%w: %s is inside the %s archives", ErrOverlappingLayout, dist, p)
		}
	}
	return nil
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
