package output

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONWriter writes dependency reports as JSON.
type JSONWriter struct{}

// JSONReport is the JSON output structure for a dependency report.
type JSONReport struct {
	RepoPath     string      `json:"repo"`
	GeneratedAt  string      `json:"generatedAt"`
	Options      JSONOptions `json:"options"`
	Roots        []JSONRoot  `json:"roots"`
	Dependencies []string    `json:"dependencies"`
}

// JSONOptions holds the detection settings in JSON format.
type JSONOptions struct {
	IgnoreFixups bool   `json:"ignoreFixups"`
	BlameAt      string `json:"blameAt"`
	HunkSide     string `json:"hunkSide"`
	Backend      string `json:"backend"`
	ContextLines int    `json:"contextLines"`
}

// JSONRoot is the JSON output structure for one requested commit.
type JSONRoot struct {
	Revision     string       `json:"revision"`
	Commit       JSONCommit   `json:"commit"`
	Dependencies []JSONCommit `json:"dependencies"`
}

// JSONCommit is the JSON output structure for a single commit.
type JSONCommit struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Date    string `json:"date"`
	Fixup   bool   `json:"fixup,omitempty"`
	Target  string `json:"fixupTarget,omitempty"`
}

func toJSONCommit(c CommitSummary) JSONCommit {
	return JSONCommit{
		ID:      c.ID,
		Summary: c.Summary,
		Author:  c.Author,
		Email:   c.Email,
		Date:    c.When.Format(time.RFC3339),
		Fixup:   c.Fixup,
		Target:  c.FixupTarget,
	}
}

// Write outputs the dependency report as JSON.
func (w *JSONWriter) Write(report *DependencyReport, options OutputOptions) error {
	roots := make([]JSONRoot, len(report.Roots))
	for i, root := range report.Roots {
		deps := make([]JSONCommit, len(root.Dependencies))
		for j, d := range root.Dependencies {
			deps[j] = toJSONCommit(d)
		}
		roots[i] = JSONRoot{
			Revision:     root.Revision,
			Commit:       toJSONCommit(root.Commit),
			Dependencies: deps,
		}
	}

	all := report.Dependencies()
	ids := make([]string, len(all))
	for i, d := range all {
		ids[i] = d.ID
	}

	jsonReport := JSONReport{
		RepoPath:    report.RepoPath,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Options: JSONOptions{
			IgnoreFixups: report.Options.IgnoreFixups,
			BlameAt:      report.Options.BlameAt,
			HunkSide:     report.Options.HunkSide,
			Backend:      report.Options.Backend,
			ContextLines: report.Options.ContextLines,
		},
		Roots:        roots,
		Dependencies: ids,
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func writeJSON(data interface{}, outputPath string) error {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
