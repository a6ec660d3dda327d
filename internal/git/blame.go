package git

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// parsePorcelainBlame parses `git blame --porcelain` output into a BlameMap.
//
// Porcelain format:
//
//	<sha> <orig-line> <final-line> [<num-lines>]
//	header lines (author, committer, summary, previous, filename, boundary...)
//	\t<actual line content>
//
// Every blamed line starts with a sha line; the headers after it appear only
// the first time a commit is seen.
func parsePorcelainBlame(out []byte) (BlameMap, error) {
	blame := make(BlameMap)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	expectSHA := true
	for scanner.Scan() {
		line := scanner.Text()

		// Tab-prefixed lines are content; the next line starts a new entry.
		if strings.HasPrefix(line, "\t") {
			expectSHA = true
			continue
		}
		if !expectSHA || line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 || !isObjectName(fields[0]) {
			return nil, fmt.Errorf("unexpected blame line %q", line)
		}
		finalLine, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("parse blame line number %q: %w", fields[2], err)
		}
		if finalLine > 0 {
			blame[finalLine] = ObjectID(fields[0])
		}
		expectSHA = false
	}

	return blame, scanner.Err()
}

// isObjectName reports whether s is a full SHA-1 or SHA-256 hex object name.
func isObjectName(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
