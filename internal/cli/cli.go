package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/buildinfo"
	"github.com/matzehuels/linepart/pkg/cache"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "linepart"

	// Environment variables consulted for the cache backend.
	envCacheDir = "LINEPART_CACHE_DIR"
	envRedisURL = "LINEPART_REDIS_URL"

	// envCachePrefix namespaces cache keys, for sharing one Redis.
	envCachePrefix = "LINEPART_CACHE_PREFIX"

	// cacheOff disables caching when passed to --cache.
	cacheOff = "off"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flag values, bound by RootCommand.
	configPath string
	cacheSpec  string
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
		Use:   appName,
		Short: "linepart splits weighted graphs into balanced contiguous partitions",
		Long: `linepart coarsens a weighted graph into clusters of strongly related nodes,
lays the clusters out on a line and cuts the line into k contiguous partitions
whose heaviest member is as light as possible.

Partition cost counts node weight, edges inside the partition and edges cut at
its borders, so the result suits placing graph workloads onto a chain of
machines.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML file with pipeline options (flags override it)")
	root.PersistentFlags().StringVar(&c.cacheSpec, "cache", "",
		"cache backend: directory path, redis:// URL, or \"off\" (default ~/.cache/linepart)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.coarsenCommand())
	root.AddCommand(c.partitionCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := openCache(ctx, c.cacheSpec)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, newKeyer(), c.Logger), nil
}

// newKeyer returns the default keyer, prefixed by LINEPART_CACHE_PREFIX.
func newKeyer() cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	if prefix := os.Getenv(envCachePrefix); prefix != "" {
		return cache.NewScopedKeyer(keyer, prefix)
	}
	return keyer
}

// openCache resolves a --cache value. An empty spec falls back to
// LINEPART_REDIS_URL, then to the file cache directory.
func openCache(ctx context.Context, spec string) (cache.Cache, error) {
	if spec == "" {
		spec = os.Getenv(envRedisURL)
	}
	switch {
	case spec == cacheOff:
		return cache.NewNullCache(), nil
	case isRedisURL(spec):
		return cache.NewRedisCache(ctx, spec)
	case spec != "":
		return cache.NewFileCache(spec)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func isRedisURL(s string) bool {
	return strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory: LINEPART_CACHE_DIR if set, otherwise
// the XDG cache home (~/.cache/linepart/).
func cacheDir() (string, error) {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir, nil
	}
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
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. A known format
// extension on output is stripped too.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
