package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/masmgr/git-deps/internal/deps"
	"github.com/masmgr/git-deps/internal/fixup"
	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/logging"
	"github.com/masmgr/git-deps/internal/output"
)

// Config is the root configuration structure.
type Config struct {
	Detect  DetectConfig  `json:"detect" toml:"detect" yaml:"detect"`
	Diff    DiffConfig    `json:"diff" toml:"diff" yaml:"diff"`
	Fixup   FixupConfig   `json:"fixup" toml:"fixup" yaml:"fixup"`
	Filters FilterConfig  `json:"filters" toml:"filters" yaml:"filters"`
	Cache   CacheConfig   `json:"cache" toml:"cache" yaml:"cache"`
	Logging LoggingConfig `json:"logging" toml:"logging" yaml:"logging"`
}

// DetectConfig holds dependency detection settings.
type DetectConfig struct {
	IgnoreFixups bool   `json:"ignoreFixups" toml:"ignoreFixups" yaml:"ignoreFixups"`
	BlameAt      string `json:"blameAt" toml:"blameAt" yaml:"blameAt"`    // parent or tip
	HunkSide     string `json:"hunkSide" toml:"hunkSide" yaml:"hunkSide"` // old or new
	Backend      string `json:"backend" toml:"backend" yaml:"backend"`    // auto, git or go-git
	Format       string `json:"format" toml:"format" yaml:"format"`
}

// DiffConfig holds tree diff settings.
type DiffConfig struct {
	ContextLines      int  `json:"contextLines" toml:"contextLines" yaml:"contextLines"`
	RenameScore       int  `json:"renameScore" toml:"renameScore" yaml:"renameScore"`
	IndentHeuristic   bool `json:"indentHeuristic" toml:"indentHeuristic" yaml:"indentHeuristic"`
	DetectCopies      bool `json:"detectCopies" toml:"detectCopies" yaml:"detectCopies"`
	IncludeUnmodified bool `json:"includeUnmodified" toml:"includeUnmodified" yaml:"includeUnmodified"`
}

// FixupConfig holds message prefixes that mark fixup commits in addition to
// "fixup! ", which is always recognized.
type FixupConfig struct {
	Prefixes []string `json:"prefixes" toml:"prefixes" yaml:"prefixes"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" toml:"include" yaml:"include"`
	Exclude []string `json:"exclude" toml:"exclude" yaml:"exclude"`
}

// CacheConfig holds the persistent resolution cache settings.
type CacheConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Path    string `json:"path" toml:"path" yaml:"path"` // empty means the user cache directory
}

// LoggingConfig holds diagnostic logging settings.
type LoggingConfig struct {
	Level string `json:"level" toml:"level" yaml:"level"`
	File  string `json:"file" toml:"file" yaml:"file"` // empty means stderr
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	diff := git.DefaultDiffOptions()
	return &Config{
		Detect: DetectConfig{
			BlameAt:  deps.EpochParent.String(),
			HunkSide: git.SideOld.String(),
			Backend:  string(git.BackendAuto),
			Format:   string(output.FormatPlain),
		},
		Diff: DiffConfig{
			ContextLines:      diff.ContextLines,
			RenameScore:       diff.RenameScore,
			IndentHeuristic:   diff.IndentHeuristic,
			DetectCopies:      diff.DetectCopies,
			IncludeUnmodified: diff.IncludeUnmodified,
		},
		Fixup: FixupConfig{
			Prefixes: []string{},
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// configFileNames lists the file names searched when no path is given.
var configFileNames = []string{
	".git-deps.json",
	".git-deps.toml",
	".git-deps.yaml",
	".git-deps.yml",
}

// LoadConfig loads configuration from a file, merging with defaults.
// An empty path searches the working directory, then the home directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}
	for _, dir := range dirs {
		for _, name := range configFileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// SaveConfig saves configuration to a file as JSON.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := deps.ParseEpoch(c.Detect.BlameAt); err != nil {
		errs = append(errs, err)
	}
	if _, err := deps.ParseHunkSide(c.Detect.HunkSide); err != nil {
		errs = append(errs, err)
	}
	if _, err := git.ParseBackendKind(c.Detect.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := output.ParseFormat(c.Detect.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Diff.ContextLines < 0 {
		errs = append(errs, fmt.Errorf("diff.contextLines must not be negative, got %d", c.Diff.ContextLines))
	}
	if c.Diff.RenameScore < 0 || c.Diff.RenameScore > 100 {
		errs = append(errs, fmt.Errorf("diff.renameScore must be between 0 and 100, got %d", c.Diff.RenameScore))
	}
	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

// DiffOptions returns the tree diff options described by the configuration.
func (c *Config) DiffOptions() git.DiffOptions {
	return git.DiffOptions{
		ContextLines:      c.Diff.ContextLines,
		IndentHeuristic:   c.Diff.IndentHeuristic,
		DetectCopies:      c.Diff.DetectCopies,
		IncludeUnmodified: c.Diff.IncludeUnmodified,
		RenameScore:       c.Diff.RenameScore,
	}
}

// DetectOptions converts the configuration into detection options.
func (c *Config) DetectOptions() (deps.Options, error) {
	epoch, err := deps.ParseEpoch(c.Detect.BlameAt)
	if err != nil {
		return deps.Options{}, err
	}
	side, err := deps.ParseHunkSide(c.Detect.HunkSide)
	if err != nil {
		return deps.Options{}, err
	}
	filter, err := git.NewPathFilter(c.Filters.Include, c.Filters.Exclude)
	if err != nil {
		return deps.Options{}, err
	}
	return deps.Options{
		IgnoreFixups: c.Detect.IgnoreFixups,
		Fixups:       fixup.NewClassifier(c.Fixup.Prefixes),
		Epoch:        epoch,
		Side:         side,
		Diff:         c.DiffOptions(),
		Filter:       filter,
	}, nil
}
