package deps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/masmgr/git-deps/internal/fixup"
	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/logging"
)

// ErrNoRevisions is returned when a batch is started without any revision.
var ErrNoRevisions = errors.New("no revisions given")

// Detector discovers the commits a commit depends on across all its parents.
type Detector struct {
	backend  git.Backend
	resolver Resolver
	opts     Options
	fixups   *fixup.Classifier
	logger   *slog.Logger
}

// NewDetector creates a Detector. A nil resolver uses a BlameResolver over backend.
func NewDetector(backend git.Backend, resolver Resolver, opts Options, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	if resolver == nil {
		resolver = NewBlameResolver(backend, opts, logger)
	}
	return &Detector{
		backend:  backend,
		resolver: resolver,
		opts:     opts,
		fixups:   opts.classifier(),
		logger:   logger,
	}
}

// Detect returns the dependencies of commit in discovery order, skipping ids
// already in seen and marking every new candidate seen before it is expanded.
// With IgnoreFixups, fixup commits are expanded in place instead of reported.
// The commit itself is never reported.
func (d *Detector) Detect(ctx context.Context, commit *git.Commit, seen *SeenSet) ([]git.ObjectID, error) {
	stack := make([]git.ObjectID, len(commit.Parents))
	copy(stack, commit.Parents)

	var deps []git.ObjectID
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		found, err := d.resolver.Resolve(ctx, commit, parent)
		if err != nil {
			return nil, err
		}

		for _, id := range found {
			if id == commit.ID || !seen.Add(id) {
				continue
			}

			candidate, err := d.backend.Commit(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load dependency of %s: %w", commit.ID.Short(), err)
			}

			if d.opts.IgnoreFixups && d.fixups.IsFixup(candidate.Message) {
				d.logger.Debug("expanding fixup commit", "commit", id.String(), "summary", candidate.Summary())
				stack = append(stack, id)
				continue
			}
			deps = append(deps, id)
		}
	}

	return deps, nil
}

// RootResult is the detection result for one requested commit.
type RootResult struct {
	// Revision is the expression the commit was requested by.
	Revision     string
	Commit       *git.Commit
	Dependencies []git.ObjectID
}

// DetectRevisions resolves each revision expression and detects its
// dependencies, sharing seen across the whole batch. A "base..head" range
// expands to every commit in the range, oldest first. The first failure
// aborts the batch.
func (d *Detector) DetectRevisions(ctx context.Context, revisions []string, seen *SeenSet) ([]RootResult, error) {
	if len(revisions) == 0 {
		return nil, ErrNoRevisions
	}
	if seen == nil {
		seen = NewSeenSet()
	}

	var results []RootResult
	for _, rev := range revisions {
		ids, err := d.expand(ctx, rev)
		if err != nil {
			return nil, err
		}

		for _, id := range ids {
			commit, err := d.backend.Commit(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", rev, err)
			}
			deps, err := d.Detect(ctx, commit, seen)
			if err != nil {
				return nil, fmt.Errorf("detect dependencies of %s: %w", rev, err)
			}
			d.logger.Debug("detected dependencies", "revision", rev, "commit", id.String(), "count", len(deps))
			results = append(results, RootResult{Revision: rev, Commit: commit, Dependencies: deps})
		}
	}
	return results, nil
}

// expand resolves a revision expression or range to commit ids.
func (d *Detector) expand(ctx context.Context, rev string) ([]git.ObjectID, error) {
	r, isRange, err := git.ParseRange(rev)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", git.ErrRevisionNotFound, err)
	}
	if !isRange {
		id, err := d.backend.ResolveRevision(ctx, rev)
		if err != nil {
			return nil, err
		}
		return []git.ObjectID{id}, nil
	}

	base, err := d.backend.ResolveRevision(ctx, r.Base)
	if err != nil {
		return nil, err
	}
	head, err := d.backend.ResolveRevision(ctx, r.Head)
	if err != nil {
		return nil, err
	}
	ids, err := d.backend.RevList(ctx, base, head)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", rev, err)
	}
	return ids, nil
}

// Flatten concatenates the dependencies of all results, dropping duplicates
// while keeping discovery order.
func Flatten(results []RootResult) []git.ObjectID {
	var out []git.ObjectID
	emitted := make(map[git.ObjectID]struct{})
	for _, r := range results {
		for _, id := range r.Dependencies {
			if _, ok := emitted[id]; ok {
				continue
			}
			emitted[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
