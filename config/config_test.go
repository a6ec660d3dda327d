package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/masmgr/git-deps/internal/deps"
	"github.com/masmgr/git-deps/internal/git"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Detect.BlameAt != "parent" {
		t.Errorf("Detect.BlameAt = %q, expected %q", cfg.Detect.BlameAt, "parent")
	}
	if cfg.Detect.HunkSide != "old" {
		t.Errorf("Detect.HunkSide = %q, expected %q", cfg.Detect.HunkSide, "old")
	}
	if cfg.Detect.Backend != "auto" {
		t.Errorf("Detect.Backend = %q, expected %q", cfg.Detect.Backend, "auto")
	}
	if cfg.Detect.Format != "plain" {
		t.Errorf("Detect.Format = %q, expected %q", cfg.Detect.Format, "plain")
	}
	if cfg.Detect.IgnoreFixups {
		t.Error("Detect.IgnoreFixups should default to false")
	}
	if cfg.Diff.ContextLines != 1 {
		t.Errorf("Diff.ContextLines = %d, expected 1", cfg.Diff.ContextLines)
	}
	if cfg.Diff.RenameScore != 50 {
		t.Errorf("Diff.RenameScore = %d, expected 50", cfg.Diff.RenameScore)
	}
	if !cfg.Diff.DetectCopies || !cfg.Diff.IncludeUnmodified || !cfg.Diff.IndentHeuristic {
		t.Errorf("Diff = %+v, expected copies, unmodified sources and indent heuristic enabled", cfg.Diff)
	}
	if len(cfg.Fixup.Prefixes) != 0 {
		t.Errorf("Fixup.Prefixes = %q, expected none beyond the built-in prefix", cfg.Fixup.Prefixes)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should default to false")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, expected %q", cfg.Logging.Level, "warn")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "config.json",
			content: `{
  "detect": {"ignoreFixups": true, "blameAt": "tip"},
  "fixup": {"prefixes": ["fixup! ", "squash! "]},
  "filters": {"exclude": ["vendor/**"]}
}`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `[detect]
ignoreFixups = true
blameAt = "tip"

[fixup]
prefixes = ["fixup! ", "squash! "]

[filters]
exclude = ["vendor/**"]
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `detect:
  ignoreFixups: true
  blameAt: tip
fixup:
  prefixes: ["fixup! ", "squash! "]
filters:
  exclude:
    - vendor/**
`,
		},
		{
			name: "yml",
			file: "config.yml",
			content: `detect: {ignoreFixups: true, blameAt: tip}
fixup: {prefixes: ["fixup! ", "squash! "]}
filters: {exclude: ["vendor/**"]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfigFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if !cfg.Detect.IgnoreFixups {
				t.Error("Detect.IgnoreFixups = false, expected true")
			}
			if cfg.Detect.BlameAt != "tip" {
				t.Errorf("Detect.BlameAt = %q, expected tip", cfg.Detect.BlameAt)
			}
			if !reflect.DeepEqual(cfg.Fixup.Prefixes, []string{"fixup! ", "squash! "}) {
				t.Errorf("Fixup.Prefixes = %q", cfg.Fixup.Prefixes)
			}
			if !reflect.DeepEqual(cfg.Filters.Exclude, []string{"vendor/**"}) {
				t.Errorf("Filters.Exclude = %q", cfg.Filters.Exclude)
			}
			// Unset values keep their defaults.
			if cfg.Detect.HunkSide != "old" || cfg.Diff.ContextLines != 1 {
				t.Errorf("defaults lost: side=%q context=%d", cfg.Detect.HunkSide, cfg.Diff.ContextLines)
			}
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig(missing) = %+v, expected defaults", cfg)
	}
}

func TestLoadConfig_InvalidContent(t *testing.T) {
	for name, content := range map[string]string{
		"bad.json": "{",
		"bad.toml": "[detect\n",
		"bad.yaml": "detect: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfigFile(t, name, content)); err == nil {
				t.Fatal("expected parse error, got nil")
			}
		})
	}
}

func TestLoadConfig_SearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	if err := os.WriteFile(filepath.Join(dir, ".git-deps.toml"), []byte("[diff]\ncontextLines = 3\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Diff.ContextLines != 3 {
		t.Errorf("Diff.ContextLines = %d, expected 3", cfg.Diff.ContextLines)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detect.HunkSide = "new"
	cfg.Cache.Enabled = true
	cfg.Fixup.Prefixes = []string{"fixup! ", "amend! "}

	path := filepath.Join(t.TempDir(), "saved.json")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("loaded = %+v, expected %+v", loaded, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"epoch", func(c *Config) { c.Detect.BlameAt = "yesterday" }},
		{"side", func(c *Config) { c.Detect.HunkSide = "middle" }},
		{"backend", func(c *Config) { c.Detect.Backend = "svn" }},
		{"format", func(c *Config) { c.Detect.Format = "xml" }},
		{"negative context", func(c *Config) { c.Diff.ContextLines = -1 }},
		{"rename score", func(c *Config) { c.Diff.RenameScore = 101 }},
		{"log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestDetectOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detect.IgnoreFixups = true
	cfg.Detect.BlameAt = "tip"
	cfg.Detect.HunkSide = "new"
	cfg.Diff.ContextLines = 0
	cfg.Fixup.Prefixes = []string{"squash! "}
	cfg.Filters.Exclude = []string{"docs/**"}

	opts, err := cfg.DetectOptions()
	if err != nil {
		t.Fatalf("DetectOptions() error = %v", err)
	}
	if !opts.IgnoreFixups || opts.Epoch != deps.EpochTip || opts.Side != git.SideNew {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Diff.ContextLines != 0 || opts.Diff.RenameScore != 50 {
		t.Errorf("opts.Diff = %+v", opts.Diff)
	}
	if !opts.Fixups.IsFixup("squash! x") || !opts.Fixups.IsFixup("fixup! x") || opts.Fixups.IsFixup("amend! x") {
		t.Errorf("fixup prefixes = %q", opts.Fixups.Prefixes())
	}
	if opts.Filter.Match("docs/readme.md") || !opts.Filter.Match("main.go") {
		t.Error("path filter not applied")
	}

	cfg.Filters.Include = []string{"[bad"}
	if _, err := cfg.DetectOptions(); err == nil {
		t.Error("expected invalid pattern error, got nil")
	}
}

func TestDetectOptions_FixupPrefixesExtendDefault(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"other prefix", `{"fixup": {"prefixes": ["squash! "]}}`},
		{"empty prefix", `{"fixup": {"prefixes": [""]}}`},
		{"no prefixes", `{"fixup": {"prefixes": []}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfigFile(t, "config.json", tt.content))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			opts, err := cfg.DetectOptions()
			if err != nil {
				t.Fatalf("DetectOptions() error = %v", err)
			}
			if !opts.Fixups.IsFixup("fixup! x") {
				t.Errorf("fixup! not recognized with prefixes %q", cfg.Fixup.Prefixes)
			}
		})
	}
}
