package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// BackendKind selects a Backend implementation.
type BackendKind string

const (
	// BackendAuto uses the git CLI when available and go-git otherwise.
	BackendAuto BackendKind = "auto"
	// BackendCLI shells out to the git binary.
	BackendCLI BackendKind = "git"
	// BackendGoGit reads the repository in-process.
	BackendGoGit BackendKind = "go-git"
)

// ParseBackendKind parses a backend name. The empty string means auto.
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return BackendAuto, nil
	case "git", "cli":
		return BackendCLI, nil
	case "go-git", "gogit":
		return BackendGoGit, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, git or go-git)", s)
	}
}

// OpenOptions configures Open.
type OpenOptions struct {
	RepoPath string
	Kind     BackendKind
}

// Open returns the backend selected by opts for the repository at opts.RepoPath.
func Open(ctx context.Context, opts OpenOptions) (Backend, error) {
	repoPath := opts.RepoPath
	if repoPath == "" {
		repoPath = "."
	}

	switch opts.Kind {
	case BackendCLI:
		return NewCLIBackend(ctx, repoPath)
	case BackendGoGit:
		return NewGoGitBackend(repoPath)
	case BackendAuto, "":
		if _, err := exec.LookPath("git"); err == nil {
			return NewCLIBackend(ctx, repoPath)
		}
		return NewGoGitBackend(repoPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Kind)
	}
}
