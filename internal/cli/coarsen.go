package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/graph"
	pkgio "github.com/matzehuels/linepart/pkg/io"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// coarsenCommand creates the coarsen command for the cluster stage alone.
func (c *CLI) coarsenCommand() *cobra.Command {
	f := &optionFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "coarsen [graph.json]",
		Short: "Coarsen a graph into clusters and lay them out on a line",
		Long: `Coarsen a graph into clusters and lay them out on a line.

The output JSON holds the clusters, per-round statistics and the line. Pass it
to 'partition --line' to run the balance stage separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			return c.runCoarsen(cmd.Context(), args[0], opts, output)
		},
	}

	addPartitionsFlag(cmd, f)
	addClusterFlags(cmd, f)
	addRefreshFlag(cmd, f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the cluster stage as JSON")

	return cmd
}

func (c *CLI) runCoarsen(ctx context.Context, input string, opts pipeline.Options, output string) error {
	m, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	hash, err := pipeline.GraphHash(m)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	cs, hit, err := runner.ClusterWithCacheInfo(ctx, m, hash, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Coarsened %d nodes into %d clusters", m.VertexCount(), len(cs.Clusters)))

	printStats(m.VertexCount(), m.EdgeCount(), hit)
	fmt.Println(clusterTable(cs.Clusters))
	printKeyValue("rounds", fmt.Sprintf("%d", cs.Coarsening.Rounds))
	if !cs.Coarsening.Converged {
		printWarning("stopped above the target of %d clusters", opts.Clusters)
	}

	if output != "" {
		if err := pkgio.ExportJSON(output, cs); err != nil {
			return err
		}
		printFile(output)
	}
	return nil
}
