// Package source loads the canonical command, skill and pattern definitions from disk
// into a model.Model.
//
// Layout under the source root:
//
//	commands/<id>.md          YAML frontmatter + body
//	skills/<id>/SKILL.md      YAML frontmatter + body
//	skills/<id>/**            supplementary files
//	patterns.yaml             optional pattern / antipattern lists
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
)

// Source layout names.
const (
	CommandsDir  = "commands"
	SkillsDir    = "skills"
	PatternsFile = "patterns.yaml"
)

type options struct {
	readiness Readiness
}

// Option configures Load.
type Option func(*options)

// WithReadiness sets the policy for entries marked `ready: false`. The default is
// IncludePending.
func WithReadiness(r Readiness) Option {
	return func(o *options) {
		o.readiness = r
	}
}

// Load reads every definition under root and builds the model. A single malformed
// definition aborts the load with a *ParseError. Missing commands/ or skills/ directories
// and a missing patterns.yaml are treated as empty.
func Load(root string, opts ...Option) (*model.Model, error) {
	o := options{readiness: IncludePending}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.readiness.IsValid() {
		return nil, fmt.Errorf("unknown readiness policy %q", o.readiness)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %q is not a directory", root)
	}

	defer logging.Timer("load")()
	fsys := os.DirFS(root)

	commands, err := loadCommands(fsys)
	if err != nil {
		return nil, err
	}
	skills, err := loadSkills(fsys)
	if err != nil {
		return nil, err
	}
	patterns, err := loadPatterns(fsys)
	if err != nil {
		return nil, err
	}

	if o.readiness == ExcludePending {
		commands = slices.DeleteFunc(commands, func(c model.Command) bool { return !c.Ready })
		skills = slices.DeleteFunc(skills, func(s model.Skill) bool { return !s.Ready })
	}

	m, err := model.New(commands, skills, patterns)
	if err != nil {
		return nil, &ParseError{Path: root, Err: err}
	}

	logDroppedReferences(m)

	nc, ns, np := m.Counts()
	logging.Info("loaded source",
		logging.Path(root),
		slog.Int("commands", nc),
		slog.Int("skills", ns),
		slog.Int("patterns", np),
		slog.String("readiness", o.readiness.String()),
	)

	return m, nil
}

// glob returns the sorted files in fsys matching pattern.
func glob(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
	}
	slices.Sort(matches)
	return matches, nil
}

func logDroppedReferences(m *model.Model) {
	err := m.DroppedReferences()
	if err == nil {
		return
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		logging.Warn("dropped relationship references", logging.Err(err))
		return
	}
	for _, e := range merr.Errors {
		var ref *model.ReferenceError
		if errors.As(e, &ref) {
			logging.Warn("dropped relationship reference",
				logging.Entry(ref.From),
				slog.String("relation", ref.Relation),
				slog.String("target", ref.To),
			)
		}
	}
	logging.Warn("relationship references dropped", logging.Count(len(merr.Errors)))
}
