package git

import (
	"context"
	"fmt"
	"sync"
)

// TreePair keys a canned tree diff.
type TreePair struct {
	Old ObjectID
	New ObjectID
}

// BlameKey keys a canned blame result. A zero AsOf matches blames against HEAD.
type BlameKey struct {
	Path string
	AsOf ObjectID
}

// MockBackend is a test double for Backend.
// It serves predefined commits, diffs and blames without needing a real Git repository.
// Calls are counted so tests can assert on caching behavior.
type MockBackend struct {
	Commits   map[ObjectID]*Commit
	Revisions map[string]ObjectID
	Diffs     map[TreePair][]Delta
	Blames    map[BlameKey]BlameMap
	Ranges    map[TreePair][]ObjectID

	// Error, when set, is returned by every method.
	Error error
	// BlameErrors fails blames of specific paths.
	BlameErrors map[string]error

	mu    sync.Mutex
	calls map[string]int
}

// NewMockBackend creates an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Commits:     make(map[ObjectID]*Commit),
		Revisions:   make(map[string]ObjectID),
		Diffs:       make(map[TreePair][]Delta),
		Blames:      make(map[BlameKey]BlameMap),
		Ranges:      make(map[TreePair][]ObjectID),
		BlameErrors: make(map[string]error),
		calls:       make(map[string]int),
	}
}

// AddCommit registers a commit whose tree id is derived from its id.
func (m *MockBackend) AddCommit(id ObjectID, message string, parents ...ObjectID) *Commit {
	c := &Commit{
		ID:      id,
		Tree:    "tree-" + id,
		Parents: parents,
		Message: message,
	}
	m.Commits[id] = c
	m.Revisions[string(id)] = id
	return c
}

// SetDiff registers the deltas between the trees of two commits.
func (m *MockBackend) SetDiff(parent, dependent ObjectID, deltas ...Delta) {
	m.Diffs[TreePair{Old: m.treeOf(parent), New: m.treeOf(dependent)}] = deltas
}

// SetBlame registers the blame of path as of asOf.
func (m *MockBackend) SetBlame(path string, asOf ObjectID, blame BlameMap) {
	m.Blames[BlameKey{Path: path, AsOf: asOf}] = blame
}

// Calls returns how many times the named method was invoked.
func (m *MockBackend) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockBackend) treeOf(id ObjectID) ObjectID {
	if c, ok := m.Commits[id]; ok {
		return c.Tree
	}
	return "tree-" + id
}

func (m *MockBackend) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
	return m.Error
}

// Name implements Backend.
func (m *MockBackend) Name() string { return "mock" }

// ResolveRevision implements Backend.
func (m *MockBackend) ResolveRevision(_ context.Context, expr string) (ObjectID, error) {
	if err := m.record("ResolveRevision"); err != nil {
		return "", err
	}
	id, ok := m.Revisions[expr]
	if !ok {
		return "", fmt.Errorf("resolve %q: %w", expr, ErrRevisionNotFound)
	}
	return id, nil
}

// Commit implements Backend.
func (m *MockBackend) Commit(_ context.Context, id ObjectID) (*Commit, error) {
	if err := m.record("Commit"); err != nil {
		return nil, err
	}
	c, ok := m.Commits[id]
	if !ok {
		return nil, fmt.Errorf("load commit %s: %w", id.Short(), ErrObjectAccess)
	}
	return c, nil
}

// DiffTrees implements Backend. Unknown tree pairs diff as empty.
func (m *MockBackend) DiffTrees(_ context.Context, oldTree, newTree ObjectID, _ DiffOptions) ([]Delta, error) {
	if err := m.record("DiffTrees"); err != nil {
		return nil, err
	}
	return m.Diffs[TreePair{Old: oldTree, New: newTree}], nil
}

// Blame implements Backend.
func (m *MockBackend) Blame(_ context.Context, path string, asOf ObjectID) (BlameMap, error) {
	if err := m.record("Blame"); err != nil {
		return nil, err
	}
	if err := m.BlameErrors[path]; err != nil {
		return nil, err
	}
	blame, ok := m.Blames[BlameKey{Path: path, AsOf: asOf}]
	if !ok {
		return nil, fmt.Errorf("blame %s at %s: %w", path, asOf.Short(), ErrBackend)
	}
	return blame, nil
}

// RevList implements Backend.
func (m *MockBackend) RevList(_ context.Context, base, head ObjectID) ([]ObjectID, error) {
	if err := m.record("RevList"); err != nil {
		return nil, err
	}
	return m.Ranges[TreePair{Old: base, New: head}], nil
}
