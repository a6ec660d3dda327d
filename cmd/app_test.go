package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/masmgr/git-deps/config"
	"github.com/masmgr/git-deps/internal/deps"
	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/output"
	"github.com/masmgr/git-deps/internal/testutil"
)

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", i+1)
	}
	return out
}

type fixture struct {
	dir       string
	base      string
	fixup     string
	change    string
	noConfig  string
	tempFiles string
}

// newFixture builds base <- fixup <- change. The fixup rewrites line 5 and
// the last commit changes it again, so with one line of context the last
// commit depends on base (lines 4 and 6) and the fixup (line 5).
func newFixture(t *testing.T) fixture {
	t.Helper()
	r := testutil.NewRepo(t)

	lines := numbered(20)
	r.WriteLines("f.txt", lines...)
	base := r.Commit("add f")

	lines[4] = "five"
	r.WriteLines("f.txt", lines...)
	fix := r.Commit("fixup! add f")

	lines[4] = "FIVE"
	r.WriteLines("f.txt", lines...)
	change := r.Commit("shout line five")

	tmp := t.TempDir()
	return fixture{
		dir:       r.Dir,
		base:      base,
		fixup:     fix,
		change:    change,
		noConfig:  filepath.Join(tmp, "none.json"),
		tempFiles: tmp,
	}
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stdout
	err := app.Run(append([]string{"git-deps"}, args...))
	return stdout.String(), err
}

func (f fixture) detect(t *testing.T, args ...string) string {
	t.Helper()
	out := filepath.Join(f.tempFiles, fmt.Sprintf("out-%d", len(args)))
	base := []string{"--repo", f.dir, "--config", f.noConfig, "--backend", "go-git", "--output", out}
	if _, err := f.run(t, append(base, args...)...); err != nil {
		t.Fatalf("run %v: %v", args, err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestApp_PlainOutput(t *testing.T) {
	f := newFixture(t)

	if got, want := f.detect(t, "HEAD"), f.base+"\n"+f.fixup+"\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestApp_IgnoreFixups(t *testing.T) {
	f := newFixture(t)

	if got, want := f.detect(t, "--ignore-fixups", "HEAD"), f.base+"\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestApp_DetectSubcommandJSON(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.tempFiles, "deps.json")

	_, err := f.run(t, "detect",
		"--repo", f.dir, "--config", f.noConfig, "--backend", "go-git",
		"--format", "json", "--output", out,
		"HEAD", "HEAD~1",
	)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var report output.JSONReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	if len(report.Roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(report.Roots))
	}
	if report.Roots[0].Commit.ID != f.change || report.Roots[1].Commit.ID != f.fixup {
		t.Errorf("roots = %s, %s", report.Roots[0].Commit.ID, report.Roots[1].Commit.ID)
	}
	// The batch shares one seen set, so each dependency appears once.
	if got := strings.Join(report.Dependencies, ","); got != f.base+","+f.fixup {
		t.Errorf("dependencies = %v", report.Dependencies)
	}
	if len(report.Roots[1].Dependencies) != 0 {
		t.Errorf("second root dependencies = %+v, want none", report.Roots[1].Dependencies)
	}
	if !report.Roots[0].Dependencies[1].Fixup {
		t.Error("fixup dependency not marked")
	}
	if report.Options.Backend != "go-git" || report.Options.BlameAt != "parent" {
		t.Errorf("options = %+v", report.Options)
	}
}

func TestApp_Range(t *testing.T) {
	f := newFixture(t)

	// The range expands to the fixup then the last commit. A commit is never
	// marked seen on its own behalf, so the fixup is still reported for the
	// last commit.
	got := f.detect(t, f.base+".."+f.change)
	if want := f.base + "\n" + f.fixup + "\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestApp_Cache(t *testing.T) {
	f := newFixture(t)
	db := filepath.Join(f.tempFiles, "cache.db")

	first := f.detect(t, "--cache", "--cache-path", db, "HEAD")
	second := f.detect(t, "--cache", "--cache-path", db, "HEAD")
	if first != second || first != f.base+"\n"+f.fixup+"\n" {
		t.Errorf("cached output = %q, first = %q", second, first)
	}

	stats, err := f.run(t, "cache", "stats", "--cache-path", db)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(stats, "Resolutions: 1") {
		t.Errorf("stats = %q, want one resolution", stats)
	}

	if _, err := f.run(t, "cache", "clear", "--cache-path", db); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	stats, err = f.run(t, "cache", "stats", "--cache-path", db)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(stats, "Resolutions: 0") {
		t.Errorf("stats after clear = %q", stats)
	}
}

func TestApp_Errors(t *testing.T) {
	f := newFixture(t)
	base := []string{"--repo", f.dir, "--config", f.noConfig, "--backend", "go-git"}

	_, err := f.run(t, append(base, "no-such-revision")...)
	if !errors.Is(err, git.ErrRevisionNotFound) {
		t.Errorf("unknown revision error = %v, want ErrRevisionNotFound", err)
	}

	_, err = f.run(t, "detect")
	if !errors.Is(err, deps.ErrNoRevisions) {
		t.Errorf("detect without revisions error = %v, want ErrNoRevisions", err)
	}

	_, err = f.run(t, "--repo", t.TempDir(), "--config", f.noConfig, "--backend", "go-git", "HEAD")
	if err == nil {
		t.Error("expected error for a directory that is not a repository")
	}
}

func TestApp_NoArgsShowsHelp(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "git-deps") {
		t.Errorf("help output = %q", out)
	}
}

func TestApp_ConfigInitAndShow(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.tempFiles, "cfg.json")

	if _, err := f.run(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := f.run(t, "config", "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := f.run(t, "config", "init", "--force", path); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	out, err := f.run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if cfg.Detect.BlameAt != "parent" || cfg.Diff.ContextLines != 1 {
		t.Errorf("shown config = %+v", cfg)
	}
}
