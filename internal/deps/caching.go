package deps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masmgr/git-deps/internal/cache"
	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/logging"
)

// ResolutionStore persists resolver results.
type ResolutionStore interface {
	Get(ctx context.Context, key cache.Key) ([]git.ObjectID, bool, error)
	Put(ctx context.Context, key cache.Key, ids []git.ObjectID) error
}

var _ ResolutionStore = (*cache.Store)(nil)

// CachingResolver serves resolutions from a store and records misses.
// Store failures are logged and never fail a resolution.
type CachingResolver struct {
	next    Resolver
	store   ResolutionStore
	variant string
	logger  *slog.Logger
}

// WithCache wraps r with a CachingResolver. Blame against the live tip moves
// with HEAD, so r is returned unchanged for EpochTip.
func WithCache(r Resolver, store ResolutionStore, backendName string, opts Options, logger *slog.Logger) Resolver {
	if store == nil || opts.Epoch != EpochParent {
		return r
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &CachingResolver{
		next:    r,
		store:   store,
		variant: CacheVariant(backendName, opts),
		logger:  logger,
	}
}

// CacheVariant encodes the options that change a resolution's result.
func CacheVariant(backendName string, opts Options) string {
	d := opts.Diff
	return strings.Join([]string{
		opts.Side.String(),
		backendName,
		fmt.Sprintf("U%d", d.ContextLines),
		fmt.Sprintf("M%d", d.RenameScore),
		fmt.Sprintf("indent=%t", d.IndentHeuristic),
		fmt.Sprintf("copies=%t,%t", d.DetectCopies, d.IncludeUnmodified),
		opts.Filter.Signature(),
	}, "|")
}

// Resolve implements Resolver.
func (c *CachingResolver) Resolve(ctx context.Context, dependent *git.Commit, parent git.ObjectID) ([]git.ObjectID, error) {
	key := cache.Key{Dependent: dependent.ID, Parent: parent, Variant: c.variant}

	ids, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("resolution cache read failed", "error", err)
	} else if ok {
		c.logger.Debug("resolution cache hit", "commit", dependent.ID.String(), "parent", parent.String())
		return ids, nil
	}

	ids, err = c.next.Resolve(ctx, dependent, parent)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, key, ids); err != nil {
		c.logger.Warn("resolution cache write failed", "error", err)
	}
	return ids, nil
}
