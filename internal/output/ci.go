package output

import (
	"encoding/json"
	"io"
	"time"
)

// CIWriter writes dependency reports as newline-delimited JSON for CI pipelines.
type CIWriter struct{}

type ciSummaryLine struct {
	Type         string `json:"type"`
	Repo         string `json:"repo"`
	GeneratedAt  string `json:"generatedAt"`
	Roots        int    `json:"roots"`
	Dependencies int    `json:"dependencies"`
	Fixups       int    `json:"fixups"`
}

type ciDependencyLine struct {
	Type       string `json:"type"`
	Root       string `json:"root"`
	Dependency string `json:"dependency"`
	Summary    string `json:"summary"`
	Author     string `json:"author"`
	Date       string `json:"date"`
	Fixup      bool   `json:"fixup,omitempty"`
}

// Write outputs a summary line followed by one line per dependency edge.
func (w *CIWriter) Write(report *DependencyReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	all := report.Dependencies()
	fixups := 0
	for _, d := range all {
		if d.Fixup {
			fixups++
		}
	}

	if err := writeNDJSONLine(out, ciSummaryLine{
		Type:         "summary",
		Repo:         report.RepoPath,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		Roots:        len(report.Roots),
		Dependencies: len(all),
		Fixups:       fixups,
	}); err != nil {
		return err
	}

	for _, root := range report.Roots {
		for _, d := range root.Dependencies {
			if err := writeNDJSONLine(out, ciDependencyLine{
				Type:       "dependency",
				Root:       root.Commit.ID,
				Dependency: d.ID,
				Summary:    d.Summary,
				Author:     d.Author,
				Date:       d.When.Format(time.RFC3339),
				Fixup:      d.Fixup,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeNDJSONLine(out io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}
