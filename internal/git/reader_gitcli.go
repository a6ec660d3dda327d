package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// CLIBackend shells out to the git binary. It supports the full diff
// configuration (copy detection, indent heuristic) and copy-tracking blame.
type CLIBackend struct {
	repoPath string
	gitPath  string
}

// NewCLIBackend verifies that repoPath is inside a work tree and that git is available.
func NewCLIBackend(ctx context.Context, repoPath string) (*CLIBackend, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git executable not found: %w", err)
	}
	b := &CLIBackend{repoPath: repoPath, gitPath: gitPath}
	if _, err := b.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoPath, err)
	}
	return b, nil
}

// Name implements Backend.
func (b *CLIBackend) Name() string { return "git" }

// run executes git in the repository and returns stdout.
func (b *CLIBackend) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", b.repoPath, "-c", "core.quotePath=false"}, args...)
	cmd := exec.CommandContext(ctx, b.gitPath, full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// ResolveRevision implements Backend.
func (b *CLIBackend) ResolveRevision(ctx context.Context, expr string) (ObjectID, error) {
	expr = strings.TrimSpace(expr)
	out, err := b.run(ctx, "rev-parse", "--verify", "--quiet", "--end-of-options", expr+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w: %w", expr, ErrRevisionNotFound, err)
	}
	return ObjectID(strings.TrimSpace(string(out))), nil
}

// Commit implements Backend.
func (b *CLIBackend) Commit(ctx context.Context, id ObjectID) (*Commit, error) {
	out, err := b.run(ctx, "cat-file", "commit", string(id))
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w: %w", id.Short(), ErrObjectAccess, err)
	}
	c, err := parseCatFileCommit(id, out)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w: %w", id.Short(), ErrObjectAccess, err)
	}
	return c, nil
}

// parseCatFileCommit parses raw commit object content as printed by `git cat-file commit`.
func parseCatFileCommit(id ObjectID, data []byte) (*Commit, error) {
	header, message, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		header, message = bytes.TrimSuffix(data, []byte("\n")), nil
	}

	c := &Commit{ID: id, Message: string(message)}
	for _, line := range strings.Split(string(header), "\n") {
		// Continuation lines of multi-line headers (gpgsig, mergetag).
		if strings.HasPrefix(line, " ") {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "tree":
			c.Tree = ObjectID(value)
		case "parent":
			c.Parents = append(c.Parents, ObjectID(value))
		case "author":
			c.Author, _ = parseSignature(value)
		case "committer":
			_, c.When = parseSignature(value)
		}
	}
	if c.Tree == "" {
		return nil, errors.New("commit has no tree")
	}
	return c, nil
}

// parseSignature parses "Name <email> 1700000000 +0100".
func parseSignature(s string) (AuthorInfo, time.Time) {
	var a AuthorInfo
	open := strings.LastIndexByte(s, '<')
	closing := strings.LastIndexByte(s, '>')
	if open == -1 || closing < open {
		return AuthorInfo{Name: strings.TrimSpace(s)}, time.Time{}
	}
	a.Name = strings.TrimSpace(s[:open])
	a.Email = s[open+1 : closing]

	fields := strings.Fields(s[closing+1:])
	if len(fields) == 0 {
		return a, time.Time{}
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return a, time.Time{}
	}
	when := time.Unix(secs, 0)
	if len(fields) > 1 {
		if loc, ok := parseTZOffset(fields[1]); ok {
			when = when.In(loc)
		}
	}
	return a, when
}

func parseTZOffset(s string) (*time.Location, bool) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return nil, false
	}
	hours, err1 := strconv.Atoi(s[1:3])
	mins, err2 := strconv.Atoi(s[3:5])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	offset := hours*3600 + mins*60
	if s[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(s, offset), true
}

// DiffTrees implements Backend.
func (b *CLIBackend) DiffTrees(ctx context.Context, oldTree, newTree ObjectID, opts DiffOptions) ([]Delta, error) {
	out, err := b.run(ctx, diffTreeArgs(oldTree, newTree, opts)...)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w: %w", oldTree.Short(), newTree.Short(), ErrBackend, err)
	}
	deltas, err := parseTreeDiff(out)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w: %w", oldTree.Short(), newTree.Short(), ErrBackend, err)
	}
	return deltas, nil
}

func diffTreeArgs(oldTree, newTree ObjectID, opts DiffOptions) []string {
	contextLines := opts.ContextLines
	if contextLines < 0 {
		contextLines = 0
	}
	score := opts.RenameScore
	if score <= 0 || score > 100 {
		score = DefaultDiffOptions().RenameScore
	}

	args := []string{
		"diff-tree", "-r", "-p",
		"--no-color", "--no-ext-diff", "--no-textconv",
		"--full-index",
		"--src-prefix=a/", "--dst-prefix=b/",
		fmt.Sprintf("-U%d", contextLines),
		fmt.Sprintf("-M%d%%", score),
	}
	if opts.IndentHeuristic {
		args = append(args, "--indent-heuristic")
	} else {
		args = append(args, "--no-indent-heuristic")
	}
	if opts.DetectCopies {
		args = append(args, fmt.Sprintf("-C%d%%", score))
		if opts.IncludeUnmodified {
			args = append(args, "--find-copies-harder")
		}
	}
	return append(args, string(oldTree), string(newTree))
}

// parseTreeDiff converts `git diff-tree -p --full-index` output into deltas.
func parseTreeDiff(out []byte) ([]Delta, error) {
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff(out)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	deltas := make([]Delta, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		d, err := fileDiffDelta(fd)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

// fileDiffDelta builds a Delta from the extended headers and hunks of one file diff.
func fileDiffDelta(fd *godiff.FileDiff) (Delta, error) {
	d := Delta{
		Old:  FileSide{Path: stripDiffPrefix(fd.OrigName, "a/")},
		New:  FileSide{Path: stripDiffPrefix(fd.NewName, "b/")},
		Kind: ChangeKindModified,
	}

	var oldPath, newPath string
	for _, ext := range fd.Extended {
		key, value, _ := strings.Cut(ext, " ")
		switch key {
		case "diff":
			// diff --git a/x b/y: used only when ---/+++ headers are absent.
			if a, bName, ok := splitDiffGitLine(value); ok {
				oldPath, newPath = a, bName
			}
		case "index":
			if err := applyIndexLine(&d, value); err != nil {
				return Delta{}, err
			}
		case "new":
			// new file mode 100644 / new mode 100644
			mode, err := parseGitFileMode(lastField(value))
			if err != nil {
				return Delta{}, err
			}
			d.New.Mode = mode
			if strings.HasPrefix(value, "file mode") {
				d.Kind = ChangeKindAdded
			}
		case "deleted":
			mode, err := parseGitFileMode(lastField(value))
			if err != nil {
				return Delta{}, err
			}
			d.Old.Mode = mode
			d.Kind = ChangeKindDeleted
		case "old":
			mode, err := parseGitFileMode(lastField(value))
			if err != nil {
				return Delta{}, err
			}
			d.Old.Mode = mode
		case "rename":
			d.Kind = ChangeKindRenamed
			applyPathHeader(&oldPath, &newPath, value, "from ", "to ")
		case "copy":
			d.Kind = ChangeKindCopied
			applyPathHeader(&oldPath, &newPath, value, "from ", "to ")
		case "similarity":
			d.Similarity = parsePercent(value)
		}
	}

	if d.Old.Path == "" || d.Old.Path == "/dev/null" {
		d.Old.Path = oldPath
	}
	if d.New.Path == "" || d.New.Path == "/dev/null" {
		d.New.Path = newPath
	}
	if d.Kind == ChangeKindAdded {
		d.Old.Path = ""
	}
	if d.Kind == ChangeKindDeleted {
		d.New.Path = ""
	}

	if !hasLines(d.Old.Mode) || !hasLines(d.New.Mode) {
		return d, nil
	}

	for _, h := range fd.Hunks {
		d.Hunks = append(d.Hunks, Hunk{
			OldStart: int(h.OrigStartLine),
			OldLines: int(h.OrigLines),
			NewStart: int(h.NewStartLine),
			NewLines: int(h.NewLines),
		})
	}
	return d, nil
}

// applyIndexLine parses "<old>..<new>[ <mode>]".
func applyIndexLine(d *Delta, value string) error {
	ids, mode, _ := strings.Cut(value, " ")
	oldID, newID, ok := strings.Cut(ids, "..")
	if !ok {
		return fmt.Errorf("unexpected index header %q", value)
	}
	d.Old.ID = ObjectID(oldID)
	d.New.ID = ObjectID(newID)
	if mode != "" {
		m, err := parseGitFileMode(strings.TrimSpace(mode))
		if err != nil {
			return err
		}
		d.Old.Mode = m
		d.New.Mode = m
	}
	return nil
}

func applyPathHeader(oldPath, newPath *string, value, fromPrefix, toPrefix string) {
	switch {
	case strings.HasPrefix(value, fromPrefix):
		*oldPath = strings.TrimPrefix(value, fromPrefix)
	case strings.HasPrefix(value, toPrefix):
		*newPath = strings.TrimPrefix(value, toPrefix)
	}
}

// splitDiffGitLine splits "--git a/x b/y". Paths containing " b/" are ambiguous
// and resolved by the rename/copy headers instead.
func splitDiffGitLine(value string) (string, string, bool) {
	rest, ok := strings.CutPrefix(value, "--git a/")
	if !ok {
		return "", "", false
	}
	a, bName, ok := strings.Cut(rest, " b/")
	return a, bName, ok
}

func stripDiffPrefix(name, prefix string) string {
	if name == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(name, prefix)
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func parsePercent(s string) int {
	// "index 87%"
	n, _ := strconv.Atoi(strings.TrimSuffix(lastField(s), "%"))
	return n
}

// Blame implements Backend.
func (b *CLIBackend) Blame(ctx context.Context, path string, asOf ObjectID) (BlameMap, error) {
	rev := string(asOf)
	if asOf.IsZero() {
		rev = "HEAD"
	}
	out, err := b.run(ctx, "blame", "--porcelain", "-M", "-C", "-C", rev, "--", path)
	if err != nil {
		return nil, fmt.Errorf("blame %s at %s: %w: %w", path, rev, ErrBackend, err)
	}
	blame, err := parsePorcelainBlame(out)
	if err != nil {
		return nil, fmt.Errorf("blame %s at %s: %w: %w", path, rev, ErrBackend, err)
	}
	return blame, nil
}

// RevList implements Backend.
func (b *CLIBackend) RevList(ctx context.Context, base, head ObjectID) ([]ObjectID, error) {
	out, err := b.run(ctx, "rev-list", "--reverse", string(base)+".."+string(head))
	if err != nil {
		return nil, fmt.Errorf("rev-list %s..%s: %w: %w", base.Short(), head.Short(), ErrObjectAccess, err)
	}
	var ids []ObjectID
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			ids = append(ids, ObjectID(line))
		}
	}
	return ids, nil
}
