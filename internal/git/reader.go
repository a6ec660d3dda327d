package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// GoGitBackend reads a repository in-process with go-git.
//
// go-git has no copy detection, no indent heuristic and no cross-file copy
// tracking in blame; those DiffOptions are ignored.
type GoGitBackend struct {
	repo *git.Repository
}

// NewGoGitBackend opens the repository containing repoPath.
func NewGoGitBackend(repoPath string) (*GoGitBackend, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoPath, err)
	}
	return &GoGitBackend{repo: repo}, nil
}

// NewGoGitBackendFromRepository wraps an already opened repository.
func NewGoGitBackendFromRepository(repo *git.Repository) *GoGitBackend {
	return &GoGitBackend{repo: repo}
}

// Name implements Backend.
func (b *GoGitBackend) Name() string { return "go-git" }

// ResolveRevision implements Backend.
func (b *GoGitBackend) ResolveRevision(_ context.Context, expr string) (ObjectID, error) {
	h, err := b.repo.ResolveRevision(plumbing.Revision(strings.TrimSpace(expr)))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w: %w", expr, ErrRevisionNotFound, err)
	}
	if _, err := b.repo.CommitObject(*h); err != nil {
		return "", fmt.Errorf("resolve %q: %w: %w", expr, ErrRevisionNotFound, err)
	}
	return ObjectID(h.String()), nil
}

// Commit implements Backend.
func (b *GoGitBackend) Commit(_ context.Context, id ObjectID) (*Commit, error) {
	c, err := b.commitObject(id)
	if err != nil {
		return nil, err
	}
	return toCommit(c), nil
}

func (b *GoGitBackend) commitObject(id ObjectID) (*object.Commit, error) {
	c, err := b.repo.CommitObject(plumbing.NewHash(string(id)))
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w: %w", id.Short(), ErrObjectAccess, err)
	}
	return c, nil
}

func toCommit(c *object.Commit) *Commit {
	parents := make([]ObjectID, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, ObjectID(p.String()))
	}
	return &Commit{
		ID:      ObjectID(c.Hash.String()),
		Tree:    ObjectID(c.TreeHash.String()),
		Parents: parents,
		Message: c.Message,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		When:    c.Committer.When,
	}
}

// DiffTrees implements Backend.
func (b *GoGitBackend) DiffTrees(ctx context.Context, oldTree, newTree ObjectID, opts DiffOptions) ([]Delta, error) {
	from, err := b.treeObject(oldTree)
	if err != nil {
		return nil, err
	}
	to, err := b.treeObject(newTree)
	if err != nil {
		return nil, err
	}

	score := opts.RenameScore
	if score <= 0 || score > 100 {
		score = DefaultDiffOptions().RenameScore
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{
		DetectRenames:    true,
		RenameScore:      uint(score),
		OnlyExactRenames: false,
	})
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w: %w", oldTree.Short(), newTree.Short(), ErrBackend, err)
	}

	deltas := make([]Delta, 0, len(changes))
	for _, ch := range changes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := b.changeDelta(ch, opts)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

func (b *GoGitBackend) treeObject(id ObjectID) (*object.Tree, error) {
	t, err := b.repo.TreeObject(plumbing.NewHash(string(id)))
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w: %w", id.Short(), ErrObjectAccess, err)
	}
	return t, nil
}

// changeDelta converts a go-git change into a Delta with line hunks.
func (b *GoGitBackend) changeDelta(ch *object.Change, opts DiffOptions) (Delta, error) {
	d := Delta{
		Old: FileSide{Path: ch.From.Name, ID: ObjectID(ch.From.TreeEntry.Hash.String()), Mode: ch.From.TreeEntry.Mode},
		New: FileSide{Path: ch.To.Name, ID: ObjectID(ch.To.TreeEntry.Hash.String()), Mode: ch.To.TreeEntry.Mode},
	}

	action, err := ch.Action()
	if err != nil {
		return Delta{}, fmt.Errorf("classify change: %w: %w", ErrBackend, err)
	}
	switch action {
	case merkletrie.Insert:
		d.Kind = ChangeKindAdded
	case merkletrie.Delete:
		d.Kind = ChangeKindDeleted
	default:
		d.Kind = ChangeKindModified
		if ch.From.Name != ch.To.Name {
			d.Kind = ChangeKindRenamed
		}
	}

	if !hasLines(d.Old.Mode) || !hasLines(d.New.Mode) {
		return d, nil
	}

	fromFile, toFile, err := ch.Files()
	if err != nil {
		return Delta{}, fmt.Errorf("load blobs for %s: %w: %w", changePath(d), ErrObjectAccess, err)
	}

	oldText, binary, err := fileText(fromFile)
	if err != nil || binary {
		return d, err
	}
	newText, binary, err := fileText(toFile)
	if err != nil || binary {
		return d, err
	}

	d.Hunks = computeHunks(oldText, newText, opts.ContextLines)
	return d, nil
}

func fileText(f *object.File) (text string, binary bool, err error) {
	if f == nil {
		return "", false, nil
	}
	binary, err = f.IsBinary()
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w: %w", f.Name, ErrObjectAccess, err)
	}
	if binary {
		return "", true, nil
	}
	text, err = f.Contents()
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w: %w", f.Name, ErrObjectAccess, err)
	}
	return text, false, nil
}

func changePath(d Delta) string {
	if d.New.Path != "" {
		return d.New.Path
	}
	return d.Old.Path
}

// Blame implements Backend.
func (b *GoGitBackend) Blame(_ context.Context, path string, asOf ObjectID) (BlameMap, error) {
	if asOf.IsZero() {
		ref, err := b.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("blame %s: resolve HEAD: %w: %w", path, ErrRevisionNotFound, err)
		}
		asOf = ObjectID(ref.Hash().String())
	}

	c, err := b.commitObject(asOf)
	if err != nil {
		return nil, err
	}

	res, err := git.Blame(c, path)
	if err != nil {
		return nil, fmt.Errorf("blame %s at %s: %w: %w", path, asOf.Short(), ErrBackend, err)
	}

	blame := make(BlameMap, len(res.Lines))
	for i, line := range res.Lines {
		blame[i+1] = ObjectID(line.Hash.String())
	}
	return blame, nil
}

// RevList implements Backend.
func (b *GoGitBackend) RevList(ctx context.Context, base, head ObjectID) ([]ObjectID, error) {
	headCommit, err := b.commitObject(head)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]bool)
	baseIter, err := b.repo.Log(&git.LogOptions{From: plumbing.NewHash(string(base))})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w: %w", base.Short(), ErrObjectAccess, err)
	}
	err = baseIter.ForEach(func(c *object.Commit) error {
		excluded[c.Hash] = true
		return ctx.Err()
	})
	if err != nil {
		return nil, walkError(ctx, base, err)
	}

	var ids []ObjectID
	err = object.NewCommitPreorderIter(headCommit, excluded, nil).ForEach(func(c *object.Commit) error {
		ids = append(ids, ObjectID(c.Hash.String()))
		return ctx.Err()
	})
	if err != nil {
		return nil, walkError(ctx, head, err)
	}

	// Oldest first, like rev-list --reverse.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}

func walkError(ctx context.Context, from ObjectID, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("walk %s: %w: %w", from.Short(), ErrObjectAccess, err)
}
