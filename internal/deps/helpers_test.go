package deps

import (
	"github.com/masmgr/git-deps/internal/git"
)

// modified builds a delta that edits path in place.
func modified(path string, hunks ...git.Hunk) git.Delta {
	return git.Delta{
		Old:   git.FileSide{Path: path, ID: git.ObjectID("blob-old-" + path)},
		New:   git.FileSide{Path: path, ID: git.ObjectID("blob-new-" + path)},
		Kind:  git.ChangeKindModified,
		Hunks: hunks,
	}
}

// added builds a delta for a file that did not exist before.
func added(path string, hunks ...git.Hunk) git.Delta {
	return git.Delta{
		Old:   git.FileSide{ID: "0000000000000000000000000000000000000000"},
		New:   git.FileSide{Path: path, ID: git.ObjectID("blob-new-" + path)},
		Kind:  git.ChangeKindAdded,
		Hunks: hunks,
	}
}

// lines replaces count lines starting at start, with equal ranges on both sides.
func lines(start, count int) git.Hunk {
	return git.Hunk{OldStart: start, OldLines: count, NewStart: start, NewLines: count}
}

// blameAll attributes lines 1..n to id.
func blameAll(n int, id git.ObjectID) git.BlameMap {
	b := make(git.BlameMap, n)
	for i := 1; i <= n; i++ {
		b[i] = id
	}
	return b
}

func ids(s ...string) []git.ObjectID {
	out := make([]git.ObjectID, len(s))
	for i, v := range s {
		out[i] = git.ObjectID(v)
	}
	return out
}
