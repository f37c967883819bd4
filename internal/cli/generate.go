package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/generate"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
)

// generateCommand creates the generate command and its generators.
func (c *CLI) generateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic input graphs",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	cmd.AddCommand(c.generateRandomCommand(&output))
	cmd.AddCommand(c.generateFatTreeCommand(&output))
	return cmd
}

func (c *CLI) generateRandomCommand(output *string) *cobra.Command {
	var (
		nodes int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Random graph with mostly local links",
		Long: `Generate a random undirected graph.

Nodes i < j are linked with probability 1/(j-i) and a weight drawn from
[1, j-i]; node weights are drawn from [1, 5]. The same seed always produces
the same graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))
			m, err := generate.Random(nodes, seed)
			if err != nil {
				return err
			}
			return writeGenerated(m, *output, prog)
		},
	}
	cmd.Flags().IntVarP(&nodes, "nodes", "n", 64, "number of nodes")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func (c *CLI) generateFatTreeCommand(output *string) *cobra.Command {
	var (
		k     int
		hosts bool
	)
	cmd := &cobra.Command{
		Use:   "fattree",
		Short: "k-ary fat-tree data center topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))
			m, err := generate.FatTree(k, hosts)
			if err != nil {
				return err
			}
			return writeGenerated(m, *output, prog)
		},
	}
	cmd.Flags().IntVarP(&k, "arity", "k", 4, "switch port count (even)")
	cmd.Flags().BoolVar(&hosts, "hosts", false, "attach hosts to edge switches")
	return cmd
}

func writeGenerated(m *model.Model[string], output string, prog *progress) error {
	if output == "" {
		return graph.WriteGraph(m, os.Stdout)
	}
	if err := graph.WriteGraphFile(m, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %d nodes, %d edges", m.VertexCount(), m.EdgeCount()))
	printFile(output)
	return nil
}
