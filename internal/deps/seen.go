package deps

import "github.com/masmgr/git-deps/internal/git"

// SeenSet records every commit already emitted or queued during one invocation.
// It is owned by the caller and shared across all roots of a batch.
type SeenSet struct {
	ids map[git.ObjectID]struct{}
}

// NewSeenSet creates an empty set, optionally pre-populated with ids.
func NewSeenSet(ids ...git.ObjectID) *SeenSet {
	s := &SeenSet{ids: make(map[git.ObjectID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add marks id as seen and reports whether it was newly added.
func (s *SeenSet) Add(id git.ObjectID) bool {
	if s.ids == nil {
		s.ids = make(map[git.ObjectID]struct{})
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether id has been seen.
func (s *SeenSet) Contains(id git.ObjectID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of seen ids.
func (s *SeenSet) Len() int {
	return len(s.ids)
}
