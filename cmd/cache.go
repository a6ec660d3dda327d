package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/git-deps/config"
)

// CacheCmd returns the cache maintenance command.
func CacheCmd() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:  "cache-path",
			Usage: "Cache database path (default: user cache directory)",
		},
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the resolution cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the cache location and number of stored resolutions",
				Flags:  flags,
				Action: cacheStatsAction,
			},
			{
				Name:   "clear",
				Usage:  "Delete every stored resolution",
				Flags:  flags,
				Action: cacheClearAction,
			},
		},
	}
}

func cachePath(c *cli.Context) (string, error) {
	if path := c.String("cache-path"); path != "" {
		return path, nil
	}
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Cache.Path, nil
}

func cacheStatsAction(c *cli.Context) error {
	path, err := cachePath(c)
	if err != nil {
		return err
	}
	store, err := openStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Len(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %s\n", color.GreenString("Cache:"), store.Path())
	fmt.Fprintf(c.App.Writer, "Resolutions: %d\n", n)
	return nil
}

func cacheClearAction(c *cli.Context) error {
	path, err := cachePath(c)
	if err != nil {
		return err
	}
	store, err := openStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Cleared %s\n", store.Path())
	return nil
}
