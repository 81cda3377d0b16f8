package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

type patternsFile struct {
	Patterns     []model.PatternCategory `yaml:"patterns"`
	Antipatterns []model.PatternCategory `yaml:"antipatterns"`
}

func loadPatterns(fsys fs.FS) ([]model.PatternPair, error) {
	data, err := fs.ReadFile(fsys, PatternsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseError{Path: PatternsFile, Err: err}
	}

	var pf patternsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ParseError{Path: PatternsFile, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}

	if err := checkNames("patterns", pf.Patterns); err != nil {
		return nil, err
	}
	if err := checkNames("antipatterns", pf.Antipatterns); err != nil {
		return nil, err
	}

	return model.PairPatterns(pf.Patterns, pf.Antipatterns), nil
}

func checkNames(field string, list []model.PatternCategory) error {
	for i, c := range list {
		if strings.TrimSpace(c.Name) == "" {
			return &ParseError{Path: PatternsFile, Field: field, Err: fmt.Errorf("entry %d has no name", i+1)}
		}
	}
	return nil
}
