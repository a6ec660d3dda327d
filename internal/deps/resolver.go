package deps

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/logging"
)

// Resolver finds the commits that last touched the lines a dependent commit
// changes relative to one parent.
type Resolver interface {
	Resolve(ctx context.Context, dependent *git.Commit, parent git.ObjectID) ([]git.ObjectID, error)
}

// BlameResolver correlates diff hunks with blame. It holds no state between calls.
type BlameResolver struct {
	backend git.Backend
	opts    Options
	logger  *slog.Logger
}

// NewBlameResolver creates a resolver over backend.
func NewBlameResolver(backend git.Backend, opts Options, logger *slog.Logger) *BlameResolver {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &BlameResolver{backend: backend, opts: opts, logger: logger}
}

// Resolve diffs parent against dependent and returns, in discovery order and
// without duplicates, the commits blame attributes the hunk lines to.
// Added files and filtered paths contribute nothing. Lines missing from a
// blame are skipped. Any backend failure aborts the call.
func (r *BlameResolver) Resolve(ctx context.Context, dependent *git.Commit, parent git.ObjectID) ([]git.ObjectID, error) {
	parentCommit, err := r.backend.Commit(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("resolve %s against %s: %w", dependent.ID.Short(), parent.Short(), err)
	}

	deltas, err := r.backend.DiffTrees(ctx, parentCommit.Tree, dependent.Tree, r.opts.Diff)
	if err != nil {
		return nil, fmt.Errorf("resolve %s against %s: %w", dependent.ID.Short(), parent.Short(), err)
	}

	asOf := parent
	if r.opts.Epoch == EpochTip {
		asOf = ""
	}

	// Blames are cached by old path for this call only; another parent may
	// attribute the same path differently.
	blames := make(map[string]git.BlameMap)
	seen := make(map[git.ObjectID]struct{})
	var found []git.ObjectID

	for _, d := range deltas {
		if d.IsAddition() {
			continue
		}
		path := d.Old.Path
		if len(d.Hunks) == 0 || !r.opts.Filter.Match(path) {
			continue
		}

		blame, ok := blames[path]
		if !ok {
			blame, err = r.backend.Blame(ctx, path, asOf)
			if err != nil {
				return nil, fmt.Errorf("resolve %s against %s: %w", dependent.ID.Short(), parent.Short(), err)
			}
			blames[path] = blame
		}

		for _, h := range d.Hunks {
			start, count := h.Range(r.opts.Side)
			for line := start; line < start+count; line++ {
				id, ok := blame.Lookup(line)
				if !ok {
					continue
				}
				r.logger.Debug("scanning line", "path", path, "line", line)
				if _, dup := seen[id]; dup {
					continue
				}
				r.logger.Debug("found dependency", "commit", id.String(), "path", path, "line", line)
				seen[id] = struct{}{}
				found = append(found, id)
			}
		}
	}

	return found, nil
}
