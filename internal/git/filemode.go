package git

import (
	"fmt"
	"strconv"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// parseGitFileMode parses an octal file mode string (e.g. "100644", "120000", "000000")
// as printed in diff headers.
func parseGitFileMode(s string) (filemode.FileMode, error) {
	if s == "" {
		return filemode.Empty, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return filemode.FileMode(v), nil
}

// hasLines reports whether content with this mode can be diffed and blamed
// line by line. Submodules (gitlinks) and trees cannot.
func hasLines(m filemode.FileMode) bool {
	return m == filemode.Empty || m.IsFile()
}
