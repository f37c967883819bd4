package cli

import (
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/linepart/pkg/io"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// optionFlags holds flag values that map onto pipeline.Options. Only flags
// the user set override the config file.
type optionFlags struct {
	partitions      int
	clusters        int
	mode            string
	commonNeighbors bool
	fragmentRepair  bool
	maxRounds       int
	order           string

	rankSwap    bool
	intervals   int
	seed        uint64
	oddK        string
	workers     int
	maxVertices int

	formats  string
	groupBy  string
	detailed bool
	refresh  bool
}

func addPartitionsFlag(cmd *cobra.Command, f *optionFlags) {
	cmd.Flags().IntVarP(&f.partitions, "partitions", "k", pipeline.DefaultPartitions, "number of partitions")
}

func addClusterFlags(cmd *cobra.Command, f *optionFlags) {
	d := pipeline.Defaults()
	cmd.Flags().IntVar(&f.clusters, "clusters", 0, "coarsening target (default: --partitions)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "closest neighbor rule: nearest, strongest (default strongest with --common-neighbors)")
	cmd.Flags().BoolVar(&f.commonNeighbors, "common-neighbors", d.CommonNeighbors, "weight edges by shared neighbors before coarsening")
	cmd.Flags().BoolVar(&f.fragmentRepair, "fragment-repair", d.FragmentRepair, "attach small clusters to a neighbor after each round")
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", pipeline.DefaultMaxRounds, "coarsening round cap")
	cmd.Flags().StringVar(&f.order, "order", "", "cluster order on the line: root, size")
}

func addBalanceFlags(cmd *cobra.Command, f *optionFlags) {
	d := pipeline.Defaults()
	cmd.Flags().BoolVar(&f.rankSwap, "rank-swap", d.RankSwap, "reorder the line with RankSwap before the DP")
	cmd.Flags().IntVar(&f.intervals, "intervals", 0, "RankSwap intervals per partition (default sqrt(n/k))")
	cmd.Flags().Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "RankSwap pairing seed")
	cmd.Flags().StringVar(&f.oddK, "odd-k", pipeline.OddRotate, "odd partition count policy: rotate, reject")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "DP worker goroutines (default GOMAXPROCS)")
	cmd.Flags().IntVar(&f.maxVertices, "max-vertices", 0, "longest line the DP accepts (default 256, -1 for no limit)")
}

func addRenderFlags(cmd *cobra.Command, f *optionFlags) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): json, csv, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&f.groupBy, "group-by", "", "diagram grouping: partitions, clusters")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show weights in diagrams")
}

func addRefreshFlag(cmd *cobra.Command, f *optionFlags) {
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute instead of reading the cache")
}

// resolveOptions layers defaults, the --config file and explicitly set flags,
// then validates the result.
func (c *CLI) resolveOptions(cmd *cobra.Command, f *optionFlags) (pipeline.Options, error) {
	opts := pipeline.Defaults()
	if c.configPath != "" {
		if err := pkgio.LoadConfig(c.configPath, &opts); err != nil {
			return opts, err
		}
	}

	set := cmd.Flags().Changed
	if set("partitions") {
		opts.Partitions = f.partitions
	}
	if set("clusters") {
		opts.Clusters = f.clusters
	}
	if set("mode") {
		opts.Mode = f.mode
	}
	if set("common-neighbors") {
		opts.CommonNeighbors = f.commonNeighbors
	}
	if set("fragment-repair") {
		opts.FragmentRepair = f.fragmentRepair
	}
	if set("max-rounds") {
		opts.MaxRounds = f.maxRounds
	}
	if set("order") {
		opts.Order = f.order
	}
	if set("rank-swap") {
		opts.RankSwap = f.rankSwap
	}
	if set("intervals") {
		opts.Intervals = f.intervals
	}
	if set("seed") {
		opts.Seed = f.seed
	}
	if set("odd-k") {
		opts.OddK = f.oddK
	}
	if set("workers") {
		opts.Workers = f.workers
	}
	if set("max-vertices") {
		opts.MaxVertices = f.maxVertices
	}
	if set("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if set("group-by") {
		opts.GroupBy = f.groupBy
	}
	if set("detailed") {
		opts.Detailed = f.detailed
	}
	opts.Refresh = f.refresh
	opts.Logger = loggerFromContext(cmd.Context())

	return opts, opts.ValidateAndSetDefaults()
}
