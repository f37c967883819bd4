package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var cfg server.Config

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the partitioning pipeline over HTTP",
		Long: `Serve the partitioning pipeline over HTTP.

  POST /v1/partition  {"graph": {...}, "options": {...}}
  GET  /healthz
  GET  /version

Requests share the cache selected by --cache, so identical requests are
answered from cache. The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return server.New(runner, c.Logger, cfg).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "request body limit in bytes")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "timeout", server.DefaultRequestTimeout, "per-request pipeline timeout")
	cmd.Flags().IntVar(&cfg.MaxVertices, "max-vertices", server.DefaultMaxVertices, "largest graph a request may submit")
	cmd.Flags().IntVar(&cfg.MaxWorkers, "max-workers", 0, "DP goroutines per request (0 = GOMAXPROCS)")

	return cmd
}
