package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/git-deps/config"
	"github.com/masmgr/git-deps/internal/cache"
	"github.com/masmgr/git-deps/internal/deps"
	"github.com/masmgr/git-deps/internal/git"
	"github.com/masmgr/git-deps/internal/logging"
	"github.com/masmgr/git-deps/internal/output"
)

// CommandContext holds common state for command execution.
// It encapsulates configuration loading, logging, repository and cache setup.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Options  deps.Options
	Backend  git.Backend
	Store    *cache.Store
	Logger   *slog.Logger

	closers []io.Closer
}

// NewCommandContext creates a context from CLI flags. Callers must Close it.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.DetectOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid detection options: %w", err)
	}

	cc := &CommandContext{
		Config:   cfg,
		RepoPath: c.String("repo"),
		Options:  opts,
	}

	if err := cc.setupLogger(c.Bool("debug")); err != nil {
		return nil, err
	}

	kind, err := git.ParseBackendKind(cfg.Detect.Backend)
	if err != nil {
		cc.Close()
		return nil, err
	}
	backend, err := git.Open(c.Context, git.OpenOptions{RepoPath: cc.RepoPath, Kind: kind})
	if err != nil {
		cc.Close()
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	cc.Backend = backend
	cc.Logger.Debug("opened repository", "path", cc.RepoPath, "backend", backend.Name())

	if cfg.Cache.Enabled {
		store, err := openStore(cfg.Cache.Path)
		if err != nil {
			cc.Close()
			return nil, err
		}
		cc.Store = store
		cc.closers = append(cc.closers, store)
		cc.Logger.Debug("opened resolution cache", "path", store.Path())
	}

	return cc, nil
}

func (cc *CommandContext) setupLogger(debug bool) error {
	level := logging.EffectiveLevel(debug, cc.Config.Logging.Level)
	if cc.Config.Logging.File == "" {
		cc.Logger = logging.New(os.Stderr, level)
		return nil
	}
	logger, file, err := logging.NewFile(cc.Config.Logging.File, level)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cc.Logger = logger
	cc.closers = append(cc.closers, file)
	return nil
}

func openStore(path string) (*cache.Store, error) {
	if path == "" {
		p, err := cache.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	store, err := cache.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}

// Detector builds the dependency detector, wrapping the resolver with the
// cache when one is open.
func (cc *CommandContext) Detector() *deps.Detector {
	resolver := deps.Resolver(deps.NewBlameResolver(cc.Backend, cc.Options, cc.Logger))
	if cc.Store != nil {
		resolver = deps.WithCache(resolver, cc.Store, cc.Backend.Name(), cc.Options, cc.Logger)
	}
	return deps.NewDetector(cc.Backend, resolver, cc.Options, cc.Logger)
}

// Close releases the cache and log file.
func (cc *CommandContext) Close() error {
	var errs []error
	for i := len(cc.closers) - 1; i >= 0; i-- {
		if err := cc.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	cc.closers = nil
	return errors.Join(errs...)
}

// OutputOptions creates OutputOptions from CLI flags and configuration.
func OutputOptions(c *cli.Context, cfg *config.Config) (output.OutputOptions, error) {
	format, err := getOutputFormat(c, cfg)
	if err != nil {
		return output.OutputOptions{}, err
	}
	return output.OutputOptions{
		Format:     format,
		OutputPath: c.String("output"),
	}, nil
}
