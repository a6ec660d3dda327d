package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/git-deps/internal/fixup"
	"github.com/masmgr/git-deps/internal/git"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*PlainWriter)(nil)
	_ ReportWriter = (*ConsoleWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
	_ ReportWriter = (*CSVWriter)(nil)
	_ ReportWriter = (*MarkdownWriter)(nil)
	_ ReportWriter = (*CIWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatPlain    OutputFormat = "plain"
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// ParseFormat parses a format name. The empty string means plain.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPlain, nil
	case FormatPlain, FormatConsole, FormatJSON, FormatCSV, FormatMarkdown, FormatCI:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "ndjson":
		return FormatCI, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected plain, console, json, csv, markdown or ci)", s)
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
}

// CommitSummary describes one commit in a report.
type CommitSummary struct {
	ID      string
	Summary string
	Author  string
	Email   string
	When    time.Time
	Fixup   bool

	// FixupTarget is the subject of the commit a fixup amends.
	FixupTarget string
}

// ShortID returns the abbreviated commit id.
func (c CommitSummary) ShortID() string {
	return git.ObjectID(c.ID).Short()
}

// NewCommitSummary builds a summary from a commit, marking fixup commits.
func NewCommitSummary(c *git.Commit, fixups *fixup.Classifier) CommitSummary {
	target, isFixup := fixups.Target(c.Message)
	return CommitSummary{
		ID:          c.ID.String(),
		Summary:     c.Summary(),
		Author:      c.Author.Name,
		Email:       c.Author.Email,
		When:        c.When,
		Fixup:       isFixup,
		FixupTarget: target,
	}
}

// RootReport holds the dependencies found for one requested commit.
type RootReport struct {
	Revision     string
	Commit       CommitSummary
	Dependencies []CommitSummary
}

// ReportOptions records the detection settings a report was produced with.
type ReportOptions struct {
	IgnoreFixups bool
	BlameAt      string
	HunkSide     string
	Backend      string
	ContextLines int
}

// DependencyReport holds the results of one invocation.
type DependencyReport struct {
	RepoPath    string
	GeneratedAt time.Time
	Options     ReportOptions
	Roots       []RootReport
}

// Dependencies returns every dependency across all roots in discovery order,
// without duplicates.
func (r *DependencyReport) Dependencies() []CommitSummary {
	var out []CommitSummary
	seen := make(map[string]struct{})
	for _, root := range r.Roots {
		for _, d := range root.Dependencies {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// ReportWriter writes dependency reports.
type ReportWriter interface {
	Write(report *DependencyReport, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatConsole:
		return &ConsoleWriter{}
	case FormatJSON:
		return &JSONWriter{}
	case FormatCSV:
		return &CSVWriter{}
	case FormatMarkdown:
		return &MarkdownWriter{}
	case FormatCI:
		return &CIWriter{}
	default:
		return &PlainWriter{}
	}
}
