package git

import "context"

// Backend is the read-only view of a repository used by dependency detection.
// Every method blocks until the underlying operation completes.
type Backend interface {
	// Name identifies the implementation ("go-git", "git", "mock").
	Name() string

	// ResolveRevision resolves a revision expression such as "HEAD~2" to a commit id.
	ResolveRevision(ctx context.Context, expr string) (ObjectID, error)

	// Commit loads a commit by id.
	Commit(ctx context.Context, id ObjectID) (*Commit, error)

	// DiffTrees diffs two tree snapshots, returning one Delta per changed file.
	DiffTrees(ctx context.Context, oldTree, newTree ObjectID, opts DiffOptions) ([]Delta, error)

	// Blame attributes every line of path as of the asOf commit.
	// A zero asOf blames against the current HEAD.
	Blame(ctx context.Context, path string, asOf ObjectID) (BlameMap, error)

	// RevList returns the commits reachable from head but not from base, oldest first.
	RevList(ctx context.Context, base, head ObjectID) ([]ObjectID, error)
}

// Compile-time interface conformance checks.
var (
	_ Backend = (*GoGitBackend)(nil)
	_ Backend = (*CLIBackend)(nil)
	_ Backend = (*MockBackend)(nil)
)
