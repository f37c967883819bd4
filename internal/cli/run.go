package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/balance"
	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// runFlags are the flags of the run command that do not map onto
// pipeline.Options.
type runFlags struct {
	output string
	strict bool
	verify bool
}

// runCommand creates the run command for the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	f := &optionFlags{}
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "Coarsen, embed and partition a graph",
		Long: `Run the full pipeline on a graph file.

The graph is reweighted by shared neighbors, coarsened into clusters, laid out
on a line cluster by cluster, rebalanced with RankSwap and finally cut into
contiguous partitions by an exact interval DP.

Coarsening and partitioning results are cached; repeated runs with the same
graph and options are instant. Use --refresh to recompute.`,
		Example: `  linepart run graph.json -k 4
  linepart run graph.json -k 4 -f json,csv,svg -o out/result
  linepart run graph.json --config linepart.toml --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			if rf.output != "" && len(opts.Formats) == 0 {
				opts.Formats = []string{pipeline.FormatJSON}
			}
			return c.runPipeline(cmd.Context(), args[0], opts, rf)
		},
	}

	addPartitionsFlag(cmd, f)
	addClusterFlags(cmd, f)
	addBalanceFlags(cmd, f)
	addRenderFlags(cmd, f)
	addRefreshFlag(cmd, f)
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "base path for artifacts (default: input path without extension)")
	cmd.Flags().BoolVar(&rf.strict, "strict", false, "fail with NOT_CONVERGED when a soft limit stops a stage early")
	cmd.Flags().BoolVar(&rf.verify, "verify", false, "check the DP optimum against brute force (small lines only)")

	return cmd
}

func (c *CLI) runPipeline(ctx context.Context, input string, opts pipeline.Options, rf *runFlags) error {
	logger := loggerFromContext(ctx)

	m, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded graph", "path", input, "nodes", m.VertexCount(), "edges", m.EdgeCount())

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var res *pipeline.Result
	err = withSpinner(ctx, "Partitioning...", func() error {
		var err error
		res, err = runner.Execute(ctx, m, opts)
		return err
	})
	if err != nil {
		return err
	}
	p := res.Partitioning

	if err := checkConverged(p, rf.strict); err != nil {
		return err
	}
	if rf.verify {
		if err := verifyOptimum(m, p, opts.Partitions); err != nil {
			return err
		}
	}

	printSuccess("Split %s into %d partitions", input, len(p.Partitions))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.ClusterHit && res.CacheInfo.BalanceHit)
	fmt.Println(partitionTable(p))
	printSummary(p)

	if len(res.Artifacts) > 0 {
		return writeArtifacts(res.Artifacts, opts.Formats, basePath(rf.output, input))
	}
	return nil
}

// checkConverged warns, or fails in strict mode, when coarsening or RankSwap
// stopped at a cap.
func checkConverged(p graph.Partitioning, strict bool) error {
	var msgs []string
	if !p.Coarsening.Converged {
		msgs = append(msgs, fmt.Sprintf("coarsening stopped at %d clusters after %d rounds", len(p.Clusters), p.Coarsening.Rounds))
	}
	if p.Swap != nil && !p.Swap.Converged {
		msgs = append(msgs, fmt.Sprintf("rank swap stopped after %d passes", p.Swap.Passes))
	}
	for _, msg := range msgs {
		if strict {
			return errors.New(errors.ErrCodeNotConverged, "%s", msg)
		}
		printWarning("%s", msg)
	}
	return nil
}

// verifyOptimum recomputes the optimum on the final line by enumeration.
func verifyOptimum(m *model.Model[string], p graph.Partitioning, k int) error {
	if len(p.Line) > balance.MaxBruteForceVertices {
		printWarning("skipping --verify: %d nodes exceed the brute-force limit of %d", len(p.Line), balance.MaxBruteForceVertices)
		return nil
	}
	want, _, err := balance.BruteForce(p.Line, m.Weight, m.LinkWeights(), k)
	if err != nil {
		return err
	}
	if want != p.Optimum {
		return errors.New(errors.ErrCodeInternal, "DP optimum %d differs from brute force %d", p.Optimum, want)
	}
	printSuccess("Verified optimum %d by brute force", want)
	return nil
}

// writeArtifacts writes each artifact to base.<format>, in request order.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) error {
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if err := errors.ValidatePath(path); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
