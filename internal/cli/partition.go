package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	pkgio "github.com/matzehuels/linepart/pkg/io"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// partitionCommand creates the partition command for the balance stage alone.
func (c *CLI) partitionCommand() *cobra.Command {
	f := &optionFlags{}
	var linePath, output string
	var strict bool

	cmd := &cobra.Command{
		Use:   "partition [graph.json]",
		Short: "Split a line of graph nodes into balanced partitions",
		Long: `Split a line of graph nodes into balanced contiguous partitions.

The line comes from --line: either the JSON written by 'coarsen -o' or a text
file with one node id per line. Without --line the nodes are taken in sorted
order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			return c.runPartition(cmd.Context(), args[0], linePath, opts, output, strict)
		},
	}

	addPartitionsFlag(cmd, f)
	addBalanceFlags(cmd, f)
	addRefreshFlag(cmd, f)
	cmd.Flags().StringVar(&linePath, "line", "", "line file (coarsen JSON or one node id per line)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail with NOT_CONVERGED when RankSwap hits its pass cap")

	return cmd
}

func (c *CLI) runPartition(ctx context.Context, input, linePath string, opts pipeline.Options, output string, strict bool) error {
	m, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	line := m.Vertices()
	if linePath != "" {
		if line, err = readLine(linePath, m); err != nil {
			return err
		}
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

	var bs pipeline.BalanceStage
	var hit bool
	err = withSpinner(ctx, "Partitioning...", func() error {
		var err error
		bs, hit, err = runner.BalanceWithCacheInfo(ctx, m, hash, line, opts)
		return err
	})
	if err != nil {
		return err
	}
	p := pipeline.Assemble(hash, pipeline.ClusterStage{}, bs)
	p.Coarsening.Converged = true
	if err := checkConverged(p, strict); err != nil {
		return err
	}

	printSuccess("Split %d nodes into %d partitions", len(line), len(p.Partitions))
	printStats(m.VertexCount(), m.EdgeCount(), hit)
	fmt.Println(partitionTable(p))
	printSummary(p)

	if output != "" {
		if err := pkgio.ExportResult(p, output); err != nil {
			return err
		}
		printFile(output)
	}
	return nil
}

// readLine loads a line from a coarsen JSON file or a plain list of ids and
// checks that it is a permutation of the graph's nodes.
func readLine(path string, m *model.Model[string]) ([]string, error) {
	var line []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var cs pipeline.ClusterStage
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
		}
		line = cs.Line
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if id := strings.TrimSpace(sc.Text()); id != "" && !strings.HasPrefix(id, "#") {
				line = append(line, id)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if len(line) != m.VertexCount() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "line has %d nodes, graph has %d", len(line), m.VertexCount())
	}
	for _, id := range line {
		if !m.HasVertex(id) {
			return nil, errors.New(errors.ErrCodeNotFound, "line node %q is not in the graph", id)
		}
	}
	return line, nil
}
