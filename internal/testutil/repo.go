// Package testutil builds throwaway Git repositories for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a non-bare repository in a temporary directory.
type Repo struct {
	Dir  string
	Repo *gogit.Repository

	tb    testing.TB
	wt    *gogit.Worktree
	clock time.Time
}

// NewRepo initializes an empty repository in tb.TempDir().
func NewRepo(tb testing.TB) *Repo {
	tb.Helper()

	dir := tb.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		tb.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		tb.Fatalf("Worktree: %v", err)
	}

	return &Repo{
		Dir:   dir,
		Repo:  repo,
		tb:    tb,
		wt:    wt,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Write writes content to rel and stages it.
func (r *Repo) Write(rel, content string) {
	r.tb.Helper()

	full := filepath.Join(r.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.tb.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.tb.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.wt.Add(filepath.ToSlash(rel)); err != nil {
		r.tb.Fatalf("Add(%s): %v", rel, err)
	}
}

// WriteLines writes one line per argument, each newline terminated.
func (r *Repo) WriteLines(rel string, lines ...string) {
	r.tb.Helper()
	r.Write(rel, strings.Join(lines, "\n")+"\n")
}

// Remove deletes rel from the worktree and the index.
func (r *Repo) Remove(rel string) {
	r.tb.Helper()
	if _, err := r.wt.Remove(filepath.ToSlash(rel)); err != nil {
		r.tb.Fatalf("Remove(%s): %v", rel, err)
	}
}

// Commit records the staged changes and returns the new commit's hex id.
// Each commit is one minute after the previous one.
func (r *Repo) Commit(message string) string {
	r.tb.Helper()
	return r.commit(message, nil)
}

// Merge records a merge commit of HEAD and the given parents.
func (r *Repo) Merge(message string, parents ...string) string {
	r.tb.Helper()

	head, err := r.Repo.Head()
	if err != nil {
		r.tb.Fatalf("Head: %v", err)
	}
	hashes := []plumbing.Hash{head.Hash()}
	for _, p := range parents {
		hashes = append(hashes, plumbing.NewHash(p))
	}
	return r.commit(message, hashes)
}

func (r *Repo) commit(message string, parents []plumbing.Hash) string {
	r.tb.Helper()

	r.clock = r.clock.Add(time.Minute)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: r.clock}
	h, err := r.wt.Commit(message, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.tb.Fatalf("Commit(%q): %v", message, err)
	}
	return h.String()
}

// Branch creates and checks out a new branch at HEAD.
func (r *Repo) Branch(name string) {
	r.tb.Helper()
	if err := r.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}); err != nil {
		r.tb.Fatalf("Checkout(%s): %v", name, err)
	}
}

// Checkout switches to an existing branch.
func (r *Repo) Checkout(name string) {
	r.tb.Helper()
	if err := r.wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	}); err != nil {
		r.tb.Fatalf("Checkout(%s): %v", name, err)
	}
}

// HeadBranch returns the short name of the current branch.
func (r *Repo) HeadBranch() string {
	r.tb.Helper()
	head, err := r.Repo.Head()
	if err != nil {
		r.tb.Fatalf("Head: %v", err)
	}
	return head.Name().Short()
}
