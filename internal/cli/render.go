package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// renderCommand creates the render command for drawing a saved result.
func (c *CLI) renderCommand() *cobra.Command {
	f := &optionFlags{}
	var graphPath, output string

	cmd := &cobra.Command{
		Use:   "render [result.json]",
		Short: "Render a saved partitioning as DOT, SVG, PNG or PDF",
		Long: `Render a saved partitioning.

The result file is the JSON written by 'run' or 'partition'; --graph names the
graph it was computed from, which supplies node weights and edges for the
diagram. PNG and PDF output need rsvg-convert on the PATH.`,
		Example: `  linepart render result.json --graph graph.json -f svg,png
  linepart render result.json --graph graph.json --group-by clusters --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			if len(opts.Formats) == 0 {
				opts.Formats = []string{pipeline.FormatSVG}
			}
			return runRender(cmd.Context(), args[0], graphPath, opts, output)
		},
	}

	addRenderFlags(cmd, f)
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "graph file the result was computed from")
	cmd.Flags().StringVarP(&output, "output", "o", "", "base output path (default: result path without extension)")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func runRender(ctx context.Context, input, graphPath string, opts pipeline.Options, output string) error {
	p, err := graph.ReadPartitioningFile(input)
	if err != nil {
		return err
	}
	m, err := graph.ReadGraphFile(graphPath)
	if err != nil {
		return err
	}
	for _, id := range p.Line {
		if !m.HasVertex(id) {
			return errors.New(errors.ErrCodeNotFound, "result node %q is not in %s", id, graphPath)
		}
	}

	var artifacts map[string][]byte
	err = withSpinner(ctx, "Rendering...", func() error {
		var err error
		artifacts, err = pipeline.Render(ctx, m, p, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	printSuccess("Rendered %d partitions", len(p.Partitions))
	return writeArtifacts(artifacts, opts.Formats, basePath(output, input))
}
