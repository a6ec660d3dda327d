package git

import "errors"

// Error taxonomy for backend failures. Backends wrap the underlying cause with
// one of these so callers can classify failures with errors.Is.
var (
	// ErrRevisionNotFound reports a revision expression that does not resolve to a commit.
	ErrRevisionNotFound = errors.New("revision not found")
	// ErrObjectAccess reports a commit, tree or blob that cannot be loaded.
	ErrObjectAccess = errors.New("object access failed")
	// ErrBackend reports a diff or blame computation failure.
	ErrBackend = errors.New("backend failure")
)
