package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ConsoleWriter writes dependency reports as aligned, colored tables.
type ConsoleWriter struct{}

// Write outputs the dependency report to the console.
func (w *ConsoleWriter) Write(report *DependencyReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, color.GreenString("Commit Dependencies"))
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Blame at: %s, hunk side: %s, backend: %s\n",
		report.Options.BlameAt, report.Options.HunkSide, report.Options.Backend)
	fmt.Fprintf(out, "Total dependencies: %d\n", len(report.Dependencies()))

	for _, root := range report.Roots {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s (%s)\n",
			color.CyanString(root.Commit.ShortID()),
			truncateMessage(root.Commit.Summary, 60),
			root.Revision,
		)

		if len(root.Dependencies) == 0 {
			fmt.Fprintln(out, "  No new dependencies.")
			continue
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  #\tCommit\tDate\tAuthor\tSummary")
		for i, d := range root.Dependencies {
			summary := truncateMessage(d.Summary, 50)
			if d.Fixup {
				summary = color.YellowString("%s -> %s", summary, truncateMessage(d.FixupTarget, 40))
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n",
				i+1,
				d.ShortID(),
				d.When.Format("2006-01-02"),
				d.Author,
				summary,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}
