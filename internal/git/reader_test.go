package git

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"

	"github.com/masmgr/git-deps/internal/testutil"
)

// fixture is a three-commit history on one file plus a feature branch.
type fixture struct {
	repo          *testutil.Repo
	first, second ObjectID
	third         ObjectID
	feature       ObjectID
	mainBranch    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	r := testutil.NewRepo(t)
	r.WriteLines("f.txt", "one", "two", "three", "four", "five")
	first := ObjectID(r.Commit("add f"))

	r.WriteLines("f.txt", "one", "two", "THREE", "four", "five")
	second := ObjectID(r.Commit("change three"))

	r.WriteLines("g.txt", "new file")
	third := ObjectID(r.Commit("add g"))
	mainBranch := r.HeadBranch()

	r.Branch("feature")
	r.WriteLines("f.txt", "one", "two", "THREE", "four", "FIVE")
	feature := ObjectID(r.Commit("change five"))
	r.Checkout(mainBranch)

	return fixture{repo: r, first: first, second: second, third: third, feature: feature, mainBranch: mainBranch}
}

// backendContract exercises the Backend operations shared by every implementation.
func backendContract(t *testing.T, b Backend, fx fixture) {
	ctx := context.Background()

	t.Run("ResolveRevision", func(t *testing.T) {
		head, err := b.ResolveRevision(ctx, "HEAD")
		if err != nil || head != fx.third {
			t.Fatalf("ResolveRevision(HEAD) = %q, %v; want %q", head, err, fx.third)
		}
		parent, err := b.ResolveRevision(ctx, "HEAD~1")
		if err != nil || parent != fx.second {
			t.Fatalf("ResolveRevision(HEAD~1) = %q, %v; want %q", parent, err, fx.second)
		}
		feature, err := b.ResolveRevision(ctx, "feature")
		if err != nil || feature != fx.feature {
			t.Fatalf("ResolveRevision(feature) = %q, %v; want %q", feature, err, fx.feature)
		}
		if _, err := b.ResolveRevision(ctx, "does-not-exist"); !errors.Is(err, ErrRevisionNotFound) {
			t.Fatalf("ResolveRevision(missing) err = %v", err)
		}
	})

	t.Run("Commit", func(t *testing.T) {
		c, err := b.Commit(ctx, fx.second)
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if c.ID != fx.second || c.Tree.IsZero() {
			t.Fatalf("commit = %+v", c)
		}
		if !reflect.DeepEqual(c.Parents, []ObjectID{fx.first}) {
			t.Fatalf("Parents = %v, want [%s]", c.Parents, fx.first)
		}
		if c.Summary() != "change three" || c.Author.Email != "test@example.com" {
			t.Fatalf("commit metadata = %q %+v", c.Summary(), c.Author)
		}
		if _, err := b.Commit(ctx, "1234567890123456789012345678901234567890"); !errors.Is(err, ErrObjectAccess) {
			t.Fatalf("Commit(missing) err = %v", err)
		}
	})

	t.Run("DiffTrees", func(t *testing.T) {
		parent, _ := b.Commit(ctx, fx.first)
		child, _ := b.Commit(ctx, fx.second)
		deltas, err := b.DiffTrees(ctx, parent.Tree, child.Tree, DefaultDiffOptions())
		if err != nil {
			t.Fatalf("DiffTrees: %v", err)
		}
		if len(deltas) != 1 {
			t.Fatalf("deltas = %+v, want 1", deltas)
		}
		d := deltas[0]
		if d.Kind != ChangeKindModified || d.Old.Path != "f.txt" || d.IsAddition() {
			t.Fatalf("delta = %+v", d)
		}
		want := []Hunk{{OldStart: 2, OldLines: 3, NewStart: 2, NewLines: 3}}
		if !reflect.DeepEqual(d.Hunks, want) {
			t.Fatalf("hunks = %+v, want %+v", d.Hunks, want)
		}

		grandchild, _ := b.Commit(ctx, fx.third)
		deltas, err = b.DiffTrees(ctx, child.Tree, grandchild.Tree, DefaultDiffOptions())
		if err != nil {
			t.Fatalf("DiffTrees(add): %v", err)
		}
		if len(deltas) != 1 || !deltas[0].IsAddition() || deltas[0].New.Path != "g.txt" {
			t.Fatalf("addition deltas = %+v", deltas)
		}
	})

	t.Run("Blame", func(t *testing.T) {
		atFirst, err := b.Blame(ctx, "f.txt", fx.first)
		if err != nil {
			t.Fatalf("Blame(first): %v", err)
		}
		for line := 1; line <= 5; line++ {
			if id, ok := atFirst.Lookup(line); !ok || id != fx.first {
				t.Fatalf("blame at first, line %d = %q", line, id)
			}
		}

		atHead, err := b.Blame(ctx, "f.txt", "")
		if err != nil {
			t.Fatalf("Blame(HEAD): %v", err)
		}
		if id, _ := atHead.Lookup(3); id != fx.second {
			t.Fatalf("blame at HEAD, line 3 = %q, want %q", id, fx.second)
		}
		if id, _ := atHead.Lookup(5); id != fx.first {
			t.Fatalf("blame at HEAD, line 5 = %q, want %q", id, fx.first)
		}
		if _, ok := atHead.Lookup(6); ok {
			t.Fatal("line 6 should not exist")
		}

		if _, err := b.Blame(ctx, "missing.txt", fx.first); err == nil {
			t.Fatal("expected error blaming a missing path")
		}
	})

	t.Run("RevList", func(t *testing.T) {
		ids, err := b.RevList(ctx, fx.first, fx.third)
		if err != nil {
			t.Fatalf("RevList: %v", err)
		}
		if !reflect.DeepEqual(ids, []ObjectID{fx.second, fx.third}) {
			t.Fatalf("RevList = %v, want [%s %s]", ids, fx.second, fx.third)
		}

		ids, err = b.RevList(ctx, fx.third, fx.feature)
		if err != nil {
			t.Fatalf("RevList(feature): %v", err)
		}
		if !reflect.DeepEqual(ids, []ObjectID{fx.feature}) {
			t.Fatalf("RevList(feature) = %v, want [%s]", ids, fx.feature)
		}
	})
}

func TestGoGitBackend(t *testing.T) {
	fx := newFixture(t)

	b, err := NewGoGitBackend(fx.repo.Dir)
	if err != nil {
		t.Fatalf("NewGoGitBackend: %v", err)
	}
	if b.Name() != "go-git" {
		t.Fatalf("Name() = %q", b.Name())
	}
	backendContract(t, b, fx)
}

func TestCLIBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping git CLI integration test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	fx := newFixture(t)

	b, err := NewCLIBackend(context.Background(), fx.repo.Dir)
	if err != nil {
		t.Fatalf("NewCLIBackend: %v", err)
	}
	if b.Name() != "git" {
		t.Fatalf("Name() = %q", b.Name())
	}
	backendContract(t, b, fx)
}

func TestNewGoGitBackend_NotARepository(t *testing.T) {
	if _, err := NewGoGitBackend(t.TempDir()); err == nil {
		t.Fatal("expected error opening a plain directory")
	}
}

func TestParseBackendKind(t *testing.T) {
	tests := []struct {
		in      string
		want    BackendKind
		wantErr bool
	}{
		{in: "", want: BackendAuto},
		{in: "auto", want: BackendAuto},
		{in: "git", want: BackendCLI},
		{in: "CLI", want: BackendCLI},
		{in: "go-git", want: BackendGoGit},
		{in: "gogit", want: BackendGoGit},
		{in: "libgit2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseBackendKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackendKind(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackendKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpen_GoGit(t *testing.T) {
	fx := newFixture(t)

	b, err := Open(context.Background(), OpenOptions{RepoPath: fx.repo.Dir, Kind: BackendGoGit})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Name() != "go-git" {
		t.Fatalf("Name() = %q", b.Name())
	}
	if _, err := Open(context.Background(), OpenOptions{Kind: "svn"}); err == nil {
		t.Fatal("expected error for unknown backend kind")
	}
}
