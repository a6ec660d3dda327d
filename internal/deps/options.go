package deps

import (
	"fmt"
	"strings"

	"github.com/masmgr/git-deps/internal/fixup"
	"github.com/masmgr/git-deps/internal/git"
)

// AttributionEpoch selects the history blame is computed against.
type AttributionEpoch int

const (
	// EpochParent pins blame to the parent being diffed against.
	EpochParent AttributionEpoch = iota
	// EpochTip blames against the current HEAD of the repository.
	EpochTip
)

// String returns the configuration name of the epoch.
func (e AttributionEpoch) String() string {
	switch e {
	case EpochParent:
		return "parent"
	case EpochTip:
		return "tip"
	default:
		return "unknown"
	}
}

// ParseEpoch parses an attribution epoch name. The empty string means parent.
func ParseEpoch(s string) (AttributionEpoch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "parent", "pinned", "pinned-to-parent":
		return EpochParent, nil
	case "tip", "live", "live-tip", "head":
		return EpochTip, nil
	default:
		return 0, fmt.Errorf("unknown attribution epoch %q (expected parent or tip)", s)
	}
}

// ParseHunkSide parses a hunk side name. The empty string means old.
func ParseHunkSide(s string) (git.HunkSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "old", "pre", "pre-change":
		return git.SideOld, nil
	case "new", "post", "post-change":
		return git.SideNew, nil
	default:
		return 0, fmt.Errorf("unknown hunk side %q (expected old or new)", s)
	}
}

// Options configures dependency detection. It is read-only once detection starts.
type Options struct {
	// IgnoreFixups makes fixup commits transparent: their own dependencies
	// are reported in their place.
	IgnoreFixups bool
	// Fixups recognizes fixup commits. Nil uses the "fixup! " prefix.
	Fixups *fixup.Classifier
	Epoch  AttributionEpoch
	Side   git.HunkSide
	Diff   git.DiffOptions
	// Filter restricts which old-side paths are blamed. Nil accepts all paths.
	Filter *git.PathFilter
}

// DefaultOptions returns blame pinned to the parent, pre-change line ranges
// and the default diff configuration.
func DefaultOptions() Options {
	return Options{
		Epoch: EpochParent,
		Side:  git.SideOld,
		Diff:  git.DefaultDiffOptions(),
	}
}

func (o Options) classifier() *fixup.Classifier {
	if o.Fixups != nil {
		return o.Fixups
	}
	return fixup.Default()
}
