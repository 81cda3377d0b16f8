// Package config provides configuration management for vibebuild.
// It supports a YAML configuration file, environment variables, and sensible defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pbakaus/vibe-design-plugins/internal/packaging"
	"github.com/pbakaus/vibe-design-plugins/internal/source"
	"github.com/pbakaus/vibe-design-plugins/internal/util"
)

// FileName is the config file looked up in the working directory.
const FileName = "vibebuild.yaml"

// EnvPrefix prefixes every environment override, e.g. VIBEBUILD_DIST_DIR.
const EnvPrefix = "VIBEBUILD_"

// Config represents the complete vibebuild configuration.
type Config struct {
	// Source configures where canonical definitions are read from
	Source SourceConfig `yaml:"source"`

	// Output configures where provider trees and archives are written
	Output OutputConfig `yaml:"output"`

	// Build configures build-wide policies
	Build BuildConfig `yaml:"build"`

	// Mirror configures the local Claude Code mirror
	Mirror MirrorConfig `yaml:"mirror"`

	// Serve configures the download server
	Serve ServeConfig `yaml:"serve"`

	// Watch configures watch mode
	Watch WatchConfig `yaml:"watch"`
}

// SourceConfig holds source settings.
type SourceConfig struct {
	// Dir is the source root containing commands/, skills/ and patterns.yaml
	Dir string `yaml:"dir" env:"SOURCE_DIR"`
}

// OutputConfig holds output locations and display preferences.
type OutputConfig struct {
	// DistDir receives one directory per provider plus catalog.json
	DistDir string `yaml:"dist_dir" env:"DIST_DIR"`
	// DownloadsDir receives bundle archives, per-entry archives and manifests
	DownloadsDir string `yaml:"downloads_dir" env:"DOWNLOADS_DIR"`
	// Color controls color output (auto, always, never)
	Color string `yaml:"color" env:"COLOR"`
}

// BuildConfig holds build settings.
type BuildConfig struct {
	// Readiness decides whether entries marked ready: false are built (include, exclude)
	Readiness string `yaml:"readiness" env:"READINESS"`
	// Concurrent runs the provider transforms in parallel
	Concurrent bool `yaml:"concurrent" env:"CONCURRENT"`
}

// MirrorConfig holds local mirror settings.
type MirrorConfig struct {
	// Enabled turns the mirror stage on
	Enabled bool `yaml:"enabled" env:"MIRROR_ENABLED"`
	// Dir is the mirror root; its commands/ and skills/ are replaced on every build
	Dir string `yaml:"dir" env:"MIRROR_DIR"`
}

// ServeConfig holds download server settings.
type ServeConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr" env:"SERVE_ADDR"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	// Debounce is how long to wait after the last change before rebuilding
	Debounce time.Duration `yaml:"debounce" env:"WATCH_DEBOUNCE"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Dir: "source",
		},
		Output: OutputConfig{
			DistDir:      "dist",
			DownloadsDir: filepath.Join("dist", "downloads"),
			Color:        "auto",
		},
		Build: BuildConfig{
			Readiness:  string(source.IncludePending),
			Concurrent: true,
		},
		Mirror: MirrorConfig{
			Enabled: true,
			Dir:     util.ClaudeMirrorPath("."),
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:3000",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Load loads the configuration from path, merging with defaults and applying
// environment overrides. An empty path looks for FileName in the working directory and
// falls back to defaults when it does not exist.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromPath(path)
	}

	cfg := Default()
	data, err := os.ReadFile(FileName)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Exists reports whether a config file is present in the working directory.
func Exists() bool {
	_, err := os.Stat(FileName)
	return err == nil
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Variables follow the pattern VIBEBUILD_<KEY>; unset variables keep the current value.
func (c *Config) applyEnvironment() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration can drive a build.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Source.Dir) == "" {
		errs = append(errs, errors.New("source.dir must not be empty"))
	}
	if strings.TrimSpace(c.Output.DistDir) == "" {
		errs = append(errs, errors.New("output.dist_dir must not be empty"))
	}
	if strings.TrimSpace(c.Output.DownloadsDir) == "" {
		errs = append(errs, errors.New("output.downloads_dir must not be empty"))
	}
	if strings.TrimSpace(c.Output.DistDir) != "" && strings.TrimSpace(c.Output.DownloadsDir) != "" {
		if err := packaging.CheckLayout(c.Output.DistDir, c.Output.DownloadsDir); err != nil {
			errs = append(errs, fmt.Errorf("output.downloads_dir: %w", err))
		}
	}
	if _, err := source.ParseReadiness(c.Build.Readiness); err != nil {
		errs = append(errs, fmt.Errorf("build.readiness: %w", err))
	}
	if c.Mirror.Enabled && strings.TrimSpace(c.Mirror.Dir) == "" {
		errs = append(errs, errors.New("mirror.dir must not be empty when the mirror is enabled"))
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output.color %q is not one of auto, always, never", c.Output.Color))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch.debounce must not be negative"))
	}
	return errors.Join(errs...)
}

// Readiness returns the parsed readiness policy. Call Validate first.
func (c *Config) Readiness() source.Readiness {
	r, err := source.ParseReadiness(c.Build.Readiness)
	if err != nil {
		return source.IncludePending
	}
	return r
}

// MirrorPath returns the mirror root with a leading "~" expanded.
func (c *Config) MirrorPath() string {
	return util.ExpandHome(c.Mirror.Dir)
}
