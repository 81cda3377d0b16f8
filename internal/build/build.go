// Package build runs the vibebuild pipeline: load the source tree, transform it for every
// provider, package the results and refresh the local Claude Code mirror.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pbakaus/vibe-design-plugins/internal/catalog"
	"github.com/pbakaus/vibe-design-plugins/internal/logging"
	"github.com/pbakaus/vibe-design-plugins/internal/mirror"
	"github.com/pbakaus/vibe-design-plugins/internal/model"
	"github.com/pbakaus/vibe-design-plugins/internal/packaging"
	"github.com/pbakaus/vibe-design-plugins/internal/source"
	"github.com/pbakaus/vibe-design-plugins/internal/transform"
)

// Options configures a build.
type Options struct {
	// SourceDir is the source root.
	SourceDir string

	// DistDir receives dist/<provider> trees and catalog.json.
	DistDir string

	// DownloadsDir receives bundle and single-entry archives.
	DownloadsDir string

	// Readiness decides whether pending entries are built.
	Readiness source.Readiness

	// Concurrent runs the provider transforms in parallel.
	Concurrent bool

	// MirrorDir is the local Claude Code directory. Empty disables the mirror stage.
	MirrorDir string

	// OnStage, when set, is called after every stage transition.
	OnStage func(Stage)
}

// MirrorSubdirs are the Claude Code directories replaced in the mirror.
var MirrorSubdirs = []string{transform.ClaudeCommandsDir, transform.ClaudeSkillsDir}

// ProviderResult summarizes the packaged output of one provider.
type ProviderResult struct {
	Provider model.Provider
	// Root is dist/<provider>.
	Root string
	// Files is the number of files in the provider tree.
	Files  int
	Digest string
	Bundle packaging.ArchiveHandle
	// Entries holds the single-entry archives, in path order of their first file.
	Entries []packaging.ArchiveHandle
}

// Result contains the outcome of a build.
type Result struct {
	// Stages lists every stage the build passed through, starting with StageIdle.
	Stages []Stage

	Commands int
	Skills   int
	Patterns int

	// Providers holds one result per provider in model.AllProviders order.
	Providers []ProviderResult

	// CatalogPath is the written catalog.json.
	CatalogPath string

	// Mirror is nil when the mirror stage is disabled.
	Mirror *mirror.Result

	Duration time.Duration
}

// Stage returns the last stage reached.
func (r *Result) Stage() Stage {
	if len(r.Stages) == 0 {
		return StageIdle
	}
	return r.Stages[len(r.Stages)-1]
}

// Files returns the total number of files written across providers.
func (r *Result) Files() int {
	n := 0
	for _, p := range r.Providers {
		n += p.Files
	}
	return n
}

// Provider returns the result for p.
func (r *Result) Provider(p model.Provider) (ProviderResult, bool) {
	for _, pr := range r.Providers {
		if pr.Provider == p {
			return pr, true
		}
	}
	return ProviderResult{}, false
}

// Orchestrator runs builds with fixed options.
type Orchestrator struct {
	opts Options
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Readiness == "" {
		opts.Readiness = source.IncludePending
	}
	return &Orchestrator{opts: opts}
}

// Options returns the options the orchestrator was created with.
func (o *Orchestrator) Options() Options {
	return o.opts
}

// Run executes a full build. Any failure stops the build and is returned as a *StageError;
// the partial Result is returned alongside it.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer logging.Timer("build")()

	log := logging.WithContext(ctx)
	result := &Result{}
	o.advance(result, StageIdle)

	fail := func(err *StageError) (*Result, error) {
		o.advance(result, StageFailed)
		result.Duration = time.Since(start)
		log.Error("build failed",
			logging.Stage(err.Stage.String()),
			logging.Provider(err.Provider.String()),
			logging.Entry(err.ID),
			logging.Err(err.Err),
		)
		return result, err
	}

	if err := packaging.CheckLayout(o.opts.DistDir, o.opts.DownloadsDir); err != nil {
		return fail(stageError(StagePackaged, "", err))
	}

	m, err := o.load(ctx, result)
	if err != nil {
		return fail(stageError(StageLoaded, "", err))
	}

	trees, err := o.transform(ctx, m)
	if err != nil {
		return fail(stageError(StageTransformed, "", err))
	}
	o.advance(result, StageTransformed)

	if err := ctx.Err(); err != nil {
		return fail(stageError(StagePackaged, "", err))
	}
	// catalog.json marks dist as current; it is only rewritten once every provider packaged.
	result.CatalogPath = filepath.Join(o.opts.DistDir, catalog.FileName)
	if err := os.Remove(result.CatalogPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fail(stageError(StagePackaged, "", fmt.Errorf("failed to retire previous catalog: %w", err)))
	}
	for _, p := range model.AllProviders() {
		pr, err := o.pack(trees[p])
		if err != nil {
			return fail(stageError(StagePackaged, p, err))
		}
		result.Providers = append(result.Providers, *pr)
	}
	if err := catalog.Write(catalog.Build(m), result.CatalogPath); err != nil {
		return fail(stageError(StagePackaged, "", err))
	}
	o.advance(result, StagePackaged)

	if o.opts.MirrorDir != "" {
		if err := ctx.Err(); err != nil {
			return fail(stageError(StageMirrored, model.ClaudeCode, err))
		}
		src := filepath.Join(o.opts.DistDir, model.ClaudeCode.String(), transform.ClaudeRoot)
		mr, err := mirror.Sync(src, o.opts.MirrorDir, MirrorSubdirs...)
		if err != nil {
			return fail(stageError(StageMirrored, model.ClaudeCode, err))
		}
		result.Mirror = mr
		o.advance(result, StageMirrored)
	}

	o.advance(result, StageDone)
	result.Duration = time.Since(start)

	log.Info("build finished",
		slog.Int("commands", result.Commands),
		slog.Int("skills", result.Skills),
		logging.Count(result.Files()),
		logging.Duration(result.Duration),
	)
	return result, nil
}

// Validate loads and transforms the source without writing anything.
func (o *Orchestrator) Validate(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}
	o.advance(result, StageIdle)

	m, err := o.load(ctx, result)
	if err != nil {
		o.advance(result, StageFailed)
		return result, stageError(StageLoaded, "", err)
	}

	trees, err := o.transform(ctx, m)
	if err != nil {
		o.advance(result, StageFailed)
		return result, stageError(StageTransformed, "", err)
	}
	o.advance(result, StageTransformed)

	for _, p := range model.AllProviders() {
		tree := trees[p]
		result.Providers = append(result.Providers, ProviderResult{
			Provider: p,
			Files:    tree.Len(),
			Digest:   tree.Digest(),
		})
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (o *Orchestrator) advance(r *Result, s Stage) {
	r.Stages = append(r.Stages, s)
	logging.Debug("build stage", logging.Stage(s.String()))
	if o.opts.OnStage != nil {
		o.opts.OnStage(s)
	}
}

func (o *Orchestrator) load(ctx context.Context, r *Result) (*model.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := source.Load(o.opts.SourceDir, source.WithReadiness(o.opts.Readiness))
	if err != nil {
		return nil, err
	}
	r.Commands, r.Skills, r.Patterns = m.Counts()
	o.advance(r, StageLoaded)
	return m, nil
}

// transform builds every provider tree. Trees are only returned once all transforms have
// finished; the first error cancels the remaining ones.
func (o *Orchestrator) transform(ctx context.Context, m *model.Model) (map[model.Provider]*model.ArtifactTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !o.opts.Concurrent {
		return transform.All(m)
	}

	providers := model.AllProviders()
	trees := make([]*model.ArtifactTree, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := transform.Transform(p, m)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[model.Provider]*model.ArtifactTree, len(providers))
	for i, p := range providers {
		out[p] = trees[i]
	}
	return out, nil
}

func (o *Orchestrator) pack(tree *model.ArtifactTree) (*ProviderResult, error) {
	p := tree.Provider()
	defer logging.Timer("package " + p.String())()

	w, err := packaging.Write(tree, o.opts.DistDir)
	if err != nil {
		return nil, err
	}
	bundle, err := packaging.Archive(w, o.opts.DownloadsDir)
	if err != nil {
		return nil, err
	}
	entries, err := packaging.ExtractEntries(w, o.opts.DownloadsDir)
	if err != nil {
		return nil, err
	}
	if err := packaging.SaveManifest(w, o.opts.DownloadsDir); err != nil {
		return nil, err
	}

	return &ProviderResult{
		Provider: p,
		Root:     w.Root,
		Files:    len(w.Entries),
		Digest:   w.Digest,
		Bundle:   *bundle,
		Entries:  entries,
	}, nil
}

// String renders a one-line summary of r.
func (r *Result) String() string {
	return fmt.Sprintf("%d commands, %d skills, %d pattern pairs -> %d files for %d providers in %s",
		r.Commands, r.Skills, r.Patterns, r.Files(), len(r.Providers), r.Duration.Round(time.Millisecond))
}
