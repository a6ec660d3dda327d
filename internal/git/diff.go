package git

import (
	"fmt"
	"strings"
)

// RevisionRange is a "base..head" expression naming every commit reachable
// from head but not from base.
type RevisionRange struct {
	Base string
	Head string
}

// ParseRange splits a revision expression into a range.
// ok is false when spec names a single revision.
func ParseRange(spec string) (r RevisionRange, ok bool, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RevisionRange{}, false, fmt.Errorf("empty revision")
	}

	if strings.Contains(spec, "...") {
		return RevisionRange{}, false, fmt.Errorf("invalid revision %q: symmetric '...' ranges are not supported, use 'base..head'", spec)
	}

	idx := strings.Index(spec, "..")
	if idx == -1 {
		return RevisionRange{}, false, nil
	}

	base := spec[:idx]
	head := spec[idx+2:]
	if base == "" {
		return RevisionRange{}, false, fmt.Errorf("invalid revision range %q: missing base ref", spec)
	}
	if head == "" {
		head = "HEAD"
	}

	return RevisionRange{Base: base, Head: head}, true, nil
}
