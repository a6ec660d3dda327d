package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/git-deps/internal/deps"
)

// DetectCmd returns the detect command.
func DetectCmd() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Aliases:   []string{"d"},
		Usage:     "List the commits each given commit depends on",
		ArgsUsage: "COMMIT-ISH [COMMIT-ISH...]",
		Flags:     detectFlags(),
		Action:    detectAction,
	}
}

func detectAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("%w: pass at least one commit-ish", deps.ErrNoRevisions)
	}

	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer cc.Close()

	outOpts, err := OutputOptions(c, cc.Config)
	if err != nil {
		return err
	}

	results, err := cc.Detector().DetectRevisions(c.Context, c.Args().Slice(), deps.NewSeenSet())
	if err != nil {
		if errors.Is(err, deps.ErrNoRevisions) {
			return err
		}
		return fmt.Errorf("failed to detect dependencies: %w", err)
	}

	report, err := buildReport(c.Context, cc, results)
	if err != nil {
		return err
	}
	return writeReport(report, outOpts)
}
