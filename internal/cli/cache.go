package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reftree/pkg/cache"
	"github.com/matzehuels/reftree/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached source, layout and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())

			switch cfg.Cache.Backend {
			case cache.BackendNone:
				p.info("Caching is disabled")
				return nil
			case cache.BackendRedis:
				store, err := c.newCache(cmd.Context(), cfg, false)
				if err != nil {
					return err
				}
				defer store.Close()
				rc, ok := store.(*cache.RedisCache)
				if !ok {
					return fmt.Errorf("redis cache at %s is unavailable", cfg.Cache.RedisAddr)
				}
				if err := rc.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear redis cache: %w", err)
				}
				p.success("Cleared redis cache")
				p.detail("Address: %s", cfg.Cache.RedisAddr)
				return nil
			}

			dir, err := fileCacheDir(cfg)
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				p.info("Cache is empty")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			p.success("Cleared cache")
			p.detail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == cache.BackendRedis {
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d\n", cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
				return nil
			}
			dir, err := fileCacheDir(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// fileCacheDir returns the configured directory or the XDG default.
func fileCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
