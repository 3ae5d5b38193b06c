// Package cli implements the reftree command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reftree/pkg/buildinfo"
	"github.com/matzehuels/reftree/pkg/cache"
	"github.com/matzehuels/reftree/pkg/config"
	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/pipeline"
	"github.com/matzehuels/reftree/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "reftree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "reftree draws referral trees as card grids",
		Long:          `reftree reads a flat list of members with parent references, places them on a centered grid level by level, and draws the connectors between parents and children as SVG, HTML, PNG, PDF or in the terminal.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerValueCompletions(root)

	return root
}

// config loads the configuration file once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configPathOrDefault())
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) configPathOrDefault() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.DefaultPath()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	if ttl, err := cfg.CacheTTL(); err == nil {
		runner.TTL = ttl
	}
	return runner, nil
}

// newCache opens the configured backend. An unreachable backend degrades to
// no caching.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	store, err := cache.Open(ctx, cache.OpenOptions{
		Backend: cfg.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		},
	})
	if err != nil {
		if cfg.Cache.Backend == cache.BackendRedis {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return store, nil
}

// baseOptions returns pipeline options seeded from the configuration.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.FromConfig(cfg)
	opts.Logger = c.Logger
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/reftree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Source Flags
// =============================================================================

// sourceFlags selects where descriptors are read from.
type sourceFlags struct {
	kind       string
	uri        string
	database   string
	collection string
	sortField  string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "source kind: json, markup, mongo (default: from file extension)")
	cmd.Flags().StringVar(&f.uri, "mongo-uri", "", "MongoDB connection string")
	cmd.Flags().StringVar(&f.database, "mongo-db", "", "MongoDB database")
	cmd.Flags().StringVar(&f.collection, "mongo-collection", "", "MongoDB collection")
	cmd.Flags().StringVar(&f.sortField, "mongo-sort", "", "field to order members by")
}

// apply fills spec from the positional path and the flags. Flags override
// the configured collection.
func (f *sourceFlags) apply(spec *source.Spec, args []string) error {
	if len(args) > 0 {
		spec.Path = args[0]
	}
	spec.Kind = f.kind
	if f.uri != "" || f.database != "" || f.collection != "" {
		spec.Kind = source.KindMongo
	}
	setIf(&spec.Mongo.URI, f.uri)
	setIf(&spec.Mongo.Database, f.database)
	setIf(&spec.Mongo.Collection, f.collection)
	setIf(&spec.Mongo.SortField, f.sortField)

	switch spec.Kind {
	case "", source.KindJSON, source.KindMarkup:
		if spec.Path == "" {
			return errors.New(errors.ErrCodeInvalidInput, "a source file is required unless --kind=mongo")
		}
	case source.KindMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid source kind: %q (must be one of: %s)", spec.Kind, strings.Join(source.Kinds, ", "))
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// sourceBase returns the output path stem for spec: the source file without
// its extension, or the collection name for database sources.
func sourceBase(spec source.Spec) string {
	if spec.Kind == source.KindMongo {
		if spec.Mongo.Collection != "" {
			return spec.Mongo.Collection
		}
		return appName
	}
	return strings.TrimSuffix(spec.Path, filepath.Ext(spec.Path))
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
