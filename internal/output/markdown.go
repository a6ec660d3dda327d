package output

import (
	"fmt"
	"io"
	"time"
)

// MarkdownWriter writes dependency reports as Markdown.
type MarkdownWriter struct{}

// Write outputs the dependency report as Markdown.
func (w *MarkdownWriter) Write(report *DependencyReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	return writeMarkdown(out, report)
}

func writeMarkdown(out io.Writer, report *DependencyReport) error {
	fmt.Fprintln(out, "# Commit Dependencies")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** `%s`\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Generated:** %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "**Blame at:** %s | **Hunk side:** %s | **Backend:** %s | **Ignore fixups:** %t\n\n",
		report.Options.BlameAt, report.Options.HunkSide, report.Options.Backend, report.Options.IgnoreFixups)

	for _, root := range report.Roots {
		fmt.Fprintf(out, "## `%s` %s\n\n", root.Commit.ShortID(), escapeMarkdown(root.Commit.Summary))

		if len(root.Dependencies) == 0 {
			fmt.Fprintln(out, "_No new dependencies._")
			fmt.Fprintln(out)
			continue
		}

		fmt.Fprintln(out, "| # | Commit | Date | Author | Summary |")
		fmt.Fprintln(out, "|---|--------|------|--------|---------|")
		for i, d := range root.Dependencies {
			summary := escapeMarkdown(truncateMessage(d.Summary, 72))
			if d.Fixup {
				summary += fmt.Sprintf(" _(fixup of %s)_", escapeMarkdown(d.FixupTarget))
			}
			fmt.Fprintf(out, "| %d | `%s` | %s | %s | %s |\n",
				i+1,
				d.ShortID(),
				d.When.Format("2006-01-02"),
				escapeMarkdown(d.Author),
				summary,
			)
		}
		fmt.Fprintln(out)
	}
	return nil
}
