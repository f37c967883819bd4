package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the coarsening and partition result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand removes every entry from the backend selected by --cache.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.cacheSpec == "" && os.Getenv(envRedisURL) == "" {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			cc, err := openCache(ctx, c.cacheSpec)
			if err != nil {
				return err
			}
			defer cc.Close()

			var (
				count int
				where string
			)
			switch b := cc.(type) {
			case *cache.FileCache:
				count, err = b.Clear()
				where = b.Dir()
			case *cache.RedisCache:
				count, err = b.Clear(ctx)
				where = "redis"
			default:
				printInfo("Caching is off")
				return nil
			}
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", where)
			return nil
		},
	}
}

// cachePathCommand prints the file cache directory.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
