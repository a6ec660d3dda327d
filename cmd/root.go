package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/git-deps/config"
	"github.com/masmgr/git-deps/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "git-deps",
		Usage:     "Show the commits a commit textually depends on",
		Version:   "1.0.0",
		ArgsUsage: "COMMIT-ISH [COMMIT-ISH...]",
		Commands: []*cli.Command{
			DetectCmd(),
			CacheCmd(),
			ConfigCmd(),
		},
		Flags:  detectFlags(),
		Action: rootAction,
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "Log diagnostics to stderr",
		},
	}
}

// detectFlags are accepted by the root action and the detect command.
func detectFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.BoolFlag{
			Name:  "ignore-fixups",
			Usage: "Report the dependencies of fixup commits instead of the fixups themselves",
		},
		&cli.StringFlag{
			Name:  "blame-at",
			Usage: "History blame is computed against (parent, tip)",
		},
		&cli.StringFlag{
			Name:  "hunk-side",
			Usage: "Hunk line range used for blame (old, new)",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Repository backend (auto, git, go-git)",
		},
		&cli.IntFlag{
			Name:  "context-lines",
			Usage: "Unchanged lines of diff context blamed around each change",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (plain, console, json, csv, markdown, ci)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "Reuse resolutions stored in the persistent cache",
		},
		&cli.StringFlag{
			Name:  "cache-path",
			Usage: "Cache database path (default: user cache directory)",
		},
	)
}

// getOutputFormat parses the output format, falling back to the configured one.
func getOutputFormat(c *cli.Context, cfg *config.Config) (output.OutputFormat, error) {
	if c.IsSet("format") {
		return output.ParseFormat(c.String("format"))
	}
	return output.ParseFormat(cfg.Detect.Format)
}

// loadConfig loads configuration from file or defaults and applies CLI overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlagOverrides(c *cli.Context, cfg *config.Config) {
	if c.IsSet("ignore-fixups") {
		cfg.Detect.IgnoreFixups = c.Bool("ignore-fixups")
	}
	if c.IsSet("blame-at") {
		cfg.Detect.BlameAt = c.String("blame-at")
	}
	if c.IsSet("hunk-side") {
		cfg.Detect.HunkSide = c.String("hunk-side")
	}
	if c.IsSet("backend") {
		cfg.Detect.Backend = c.String("backend")
	}
	if c.IsSet("format") {
		cfg.Detect.Format = c.String("format")
	}
	if c.IsSet("context-lines") {
		cfg.Diff.ContextLines = c.Int("context-lines")
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if c.IsSet("cache") {
		cfg.Cache.Enabled = c.Bool("cache")
	}
	if path := c.String("cache-path"); path != "" {
		cfg.Cache.Path = path
	}
}

// rootAction runs detection when revisions are given and shows help otherwise.
func rootAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return detectAction(c)
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}
