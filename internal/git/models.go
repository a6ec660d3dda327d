package git

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// ObjectID is a hex-encoded Git object name.
type ObjectID string

// IsZero reports whether the id is empty or consists only of zeros.
// Git uses the all-zero id for the missing side of an added or deleted file.
func (id ObjectID) IsZero() bool {
	return strings.Trim(string(id), "0") == ""
}

// String returns the full hex id.
func (id ObjectID) String() string {
	return string(id)
}

// Short returns the abbreviated id used in human-readable output.
func (id ObjectID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// Commit is a read-only view of a commit in the backend's history.
type Commit struct {
	ID      ObjectID
	Tree    ObjectID
	Parents []ObjectID
	Message string // raw message, not trimmed
	Author  AuthorInfo
	When    time.Time
}

// Summary returns the first line of the commit message.
func (c *Commit) Summary() string {
	message := c.Message
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = message[:idx]
	}
	return message
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
	ChangeKindCopied
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	case ChangeKindCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// FileSide describes one side of a file-level change.
type FileSide struct {
	Path string
	ID   ObjectID
	Mode filemode.FileMode
}

// Delta is one file-level change between two trees.
type Delta struct {
	Old        FileSide
	New        FileSide
	Kind       ChangeKind
	Similarity int // percent, set for renames and copies
	Hunks      []Hunk
}

// IsAddition reports whether the file did not exist before the change.
func (d Delta) IsAddition() bool {
	return d.Old.ID.IsZero()
}

// HunkSide selects which line numbering of a hunk is used.
type HunkSide int

const (
	// SideOld uses the pre-change line range.
	SideOld HunkSide = iota
	// SideNew uses the post-change line range.
	SideNew
)

// String returns the configuration name of the side.
func (s HunkSide) String() string {
	switch s {
	case SideOld:
		return "old"
	case SideNew:
		return "new"
	default:
		return "unknown"
	}
}

// Hunk is one contiguous changed region within a Delta. Starts are 1-based.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
}

// Range returns the start line and line count on the given side.
func (h Hunk) Range(side HunkSide) (start, count int) {
	if side == SideNew {
		return h.NewStart, h.NewLines
	}
	return h.OldStart, h.OldLines
}

// BlameMap maps 1-based line numbers to the commit that last modified the line.
type BlameMap map[int]ObjectID

// Lookup returns the commit attributed to line, if any.
func (b BlameMap) Lookup(line int) (ObjectID, bool) {
	id, ok := b[line]
	if !ok || id.IsZero() {
		return "", false
	}
	return id, true
}

// DiffOptions configures tree diffing.
type DiffOptions struct {
	ContextLines      int
	IndentHeuristic   bool
	DetectCopies      bool // similarity detection across all deltas, not only modified files
	IncludeUnmodified bool // unmodified files may serve as copy sources
	RenameScore       int  // similarity threshold in percent
}

// DefaultDiffOptions returns the diff configuration used for dependency detection.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		ContextLines:      1,
		IndentHeuristic:   true,
		DetectCopies:      true,
		IncludeUnmodified: true,
		RenameScore:       50,
	}
}
