package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/statgrapher/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cachePingCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. Only the file
// backend can be cleared; Redis entries expire on their own. With --expired
// only stale entries and abandoned temp files are removed.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(cfg.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			var count int
			if expired {
				count, err = pruneDir(cmd.Context(), dir)
			} else {
				count, err = clearDir(dir)
			}
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Nothing to remove")
				return nil
			}
			printSuccess("Removed %d cache files", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired entries")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(cfg.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cachePingCommand checks that the configured backend is reachable.
func (c *CLI) cachePingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the configured cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			return c.pingCache(cmd.Context(), cfg.Cache)
		},
	}
}

func (c *CLI) pingCache(ctx context.Context, cfg CacheConfig) error {
	store, _, err := c.newCache(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	const key = appName + ":ping"
	if err := store.Set(ctx, key, []byte("ok"), cache.TTLRender); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	if _, hit, err := store.Get(ctx, key); err != nil || !hit {
		return fmt.Errorf("cache read back failed (hit=%v): %v", hit, err)
	}
	_ = store.Delete(ctx, key)

	backend := cfg.Backend
	if backend == "" {
		backend = backendFile
	}
	printSuccess("Cache backend %s is working", StyleHighlight.Render(backend))
	return nil
}

func fileCacheDir(cfg CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}

// pruneDir removes expired entries from the file cache in dir. A missing dir
// counts as empty.
func pruneDir(ctx context.Context, dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, err
	}
	return fc.Prune(ctx)
}

// clearDir removes all files under dir and then any empty subdirectories.
// A missing dir counts as empty.
func clearDir(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil // Skip errors, continue walking
		}
		if !info.IsDir() {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if info.IsDir() {
			os.Remove(path)
		}
		return nil
	})
	return count, nil
}
