package git

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter restricts which file paths take part in blame correlation.
// A nil *PathFilter accepts every path.
type PathFilter struct {
	include []string
	exclude []string
	cache   map[string]bool
}

// NewPathFilter validates the glob patterns and builds a filter.
func NewPathFilter(include, exclude []string) (*PathFilter, error) {
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	return &PathFilter{
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
		cache:   make(map[string]bool),
	}, nil
}

// Match checks if a path matches the include/exclude filters.
func (f *PathFilter) Match(path string) bool {
	if f == nil || (len(f.include) == 0 && len(f.exclude) == 0) {
		return true
	}
	if v, ok := f.cache[path]; ok {
		return v
	}
	v := f.match(path)
	f.cache[path] = v
	return v
}

func (f *PathFilter) match(path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	// Check exclude patterns first
	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	// If no include patterns, accept all
	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// Signature returns a stable description of the filter, used in cache keys.
func (f *PathFilter) Signature() string {
	if f == nil || (len(f.include) == 0 && len(f.exclude) == 0) {
		return ""
	}
	inc := append([]string(nil), f.include...)
	exc := append([]string(nil), f.exclude...)
	sort.Strings(inc)
	sort.Strings(exc)
	return "+" + strings.Join(inc, ",") + "-" + strings.Join(exc, ",")
}
