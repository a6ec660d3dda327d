package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/masmgr/git-deps/internal/deps"
	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/output"
)

// buildReport loads the reported commits and assembles the dependency report.
func buildReport(ctx context.Context, cc *CommandContext, results []deps.RootResult) (*output.DependencyReport, error) {
	fixups := cc.Options.Fixups
	loaded := make(map[git.ObjectID]output.CommitSummary)
	summarize := func(id git.ObjectID) (output.CommitSummary, error) {
		if s, ok := loaded[id]; ok {
			return s, nil
		}
		commit, err := cc.Backend.Commit(ctx, id)
		if err != nil {
			return output.CommitSummary{}, fmt.Errorf("failed to load %s: %w", id.Short(), err)
		}
		s := output.NewCommitSummary(commit, fixups)
		loaded[id] = s
		return s, nil
	}

	roots := make([]output.RootReport, 0, len(results))
	for _, r := range results {
		root := output.RootReport{
			Revision:     r.Revision,
			Commit:       output.NewCommitSummary(r.Commit, fixups),
			Dependencies: make([]output.CommitSummary, 0, len(r.Dependencies)),
		}
		for _, id := range r.Dependencies {
			s, err := summarize(id)
			if err != nil {
				return nil, err
			}
			root.Dependencies = append(root.Dependencies, s)
		}
		roots = append(roots, root)
	}

	return &output.DependencyReport{
		RepoPath:    cc.RepoPath,
		GeneratedAt: time.Now(),
		Options: output.ReportOptions{
			IgnoreFixups: cc.Options.IgnoreFixups,
			BlameAt:      cc.Options.Epoch.String(),
			HunkSide:     cc.Options.Side.String(),
			Backend:      cc.Backend.Name(),
			ContextLines: cc.Options.Diff.ContextLines,
		},
		Roots: roots,
	}, nil
}

func writeReport(report *output.DependencyReport, opts output.OutputOptions) error {
	writer := output.NewReportWriter(opts.Format)
	return writer.Write(report, opts)
}
