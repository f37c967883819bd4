package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linepart/pkg/balance"
	"github.com/matzehuels/linepart/pkg/cache"
	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/observability"
)

// twoCommunities returns two dense groups of four joined by a single link.
func twoCommunities(t *testing.T) *model.Model[string] {
	t.Helper()
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Weight: graph.Weight(3)},
			{ID: "b"}, {ID: "c"}, {ID: "d"},
			{ID: "e", Weight: graph.Weight(2)},
			{ID: "f"}, {ID: "g"}, {ID: "h"},
		},
		Edges: []graph.Edge{
			{From: "a", To: "b"}, {From: "a", To: "c"}, {From: "a", To: "d"},
			{From: "b", To: "c"}, {From: "c", To: "d"},
			{From: "e", To: "f"}, {From: "e", To: "g"}, {From: "e", To: "h"},
			{From: "f", To: "g"}, {From: "g", To: "h"},
			{From: "d", To: "e", Weight: graph.Weight(2)},
		},
	}
	m, err := graph.ToModel(g)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"csv", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "csv"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	opts := Defaults()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Partitions != DefaultPartitions {
		t.Errorf("Partitions = %d, want %d", opts.Partitions, DefaultPartitions)
	}
	if opts.Clusters != opts.Partitions {
		t.Errorf("Clusters = %d, want %d", opts.Clusters, opts.Partitions)
	}
	if opts.Mode != "strongest" {
		t.Errorf("Mode = %q, want strongest with common neighbors", opts.Mode)
	}
	if !opts.FragmentRepair || !opts.RankSwap {
		t.Error("defaults should enable fragment repair and rank swap")
	}
	if opts.OddK != OddRotate || opts.Order != "root" || opts.MaxRounds != DefaultMaxRounds {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
		mode string
	}{
		{"zero value", Options{}, "", "nearest"},
		{"common neighbors", Options{CommonNeighbors: true}, "", "strongest"},
		{"explicit mode", Options{CommonNeighbors: true, Mode: "nearest"}, "", "nearest"},
		{"negative partitions", Options{Partitions: -1}, errors.ErrCodeInvalidPartitionCount, ""},
		{"negative clusters", Options{Clusters: -3}, errors.ErrCodeInvalidConfig, ""},
		{"bad mode", Options{Mode: "closest"}, errors.ErrCodeInvalidConfig, ""},
		{"bad order", Options{Order: "random"}, errors.ErrCodeInvalidConfig, ""},
		{"negative intervals", Options{Intervals: -1}, errors.ErrCodeInvalidConfig, ""},
		{"bad odd policy", Options{OddK: "drop"}, errors.ErrCodeInvalidConfig, ""},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidConfig, ""},
		{"bad group", Options{GroupBy: "rounds"}, errors.ErrCodeInvalidConfig, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.opts.Mode != tt.mode {
				t.Errorf("Mode = %q, want %q", tt.opts.Mode, tt.mode)
			}
		})
	}
}

func TestKeyOptsIgnoreWorkers(t *testing.T) {
	a, b := Defaults(), Defaults()
	b.Workers = 8
	_ = a.ValidateAndSetDefaults()
	_ = b.ValidateAndSetDefaults()
	if a.PartitionKeyOpts() != b.PartitionKeyOpts() {
		t.Error("worker count should not change the partition key")
	}
	b.Seed = 99
	if a.PartitionKeyOpts() == b.PartitionKeyOpts() {
		t.Error("seed should change the partition key")
	}
}

func TestExecute(t *testing.T) {
	m := twoCommunities(t)
	for _, rankSwap := range []bool{false, true} {
		opts := Defaults()
		opts.RankSwap = rankSwap

		res, err := quietRunner(nil).Execute(context.Background(), m, opts)
		if err != nil {
			t.Fatalf("rankSwap=%v: %v", rankSwap, err)
		}
		p := res.Partitioning
		if err := p.Validate(); err != nil {
			t.Fatalf("rankSwap=%v: invalid result: %v", rankSwap, err)
		}
		if p.RunID == "" || p.GraphHash == "" {
			t.Error("RunID and GraphHash should be set")
		}
		if len(p.Partitions) != 2 {
			t.Fatalf("got %d partitions, want 2", len(p.Partitions))
		}
		if got := slices.Sorted(slices.Values(p.Line)); !slices.Equal(got, m.Vertices()) {
			t.Errorf("Line = %v is not a permutation of the vertices", p.Line)
		}
		for _, v := range m.Vertices() {
			if p.PartitionOf(v) == 0 {
				t.Errorf("node %s unassigned", v)
			}
		}
		if (p.Swap != nil) != rankSwap {
			t.Errorf("Swap = %v with rankSwap=%v", p.Swap, rankSwap)
		}

		want, _, err := balance.BruteForce(p.Line, m.Weight, m.LinkWeights(), 2)
		if err != nil {
			t.Fatal(err)
		}
		if p.Optimum != want {
			t.Errorf("Optimum = %d, brute force on the same line = %d", p.Optimum, want)
		}
		if res.Stats.NodeCount != 8 || res.Stats.EdgeCount != 22 {
			t.Errorf("Stats = %+v, want 8 nodes and 22 directed edges", res.Stats)
		}
	}
}

func TestExecuteCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := quietRunner(fc)
	defer runner.Close()

	m := twoCommunities(t)
	ctx := context.Background()

	first, err := runner.Execute(ctx, m, Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.ClusterHit || first.CacheInfo.BalanceHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, m, Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ClusterHit || !second.CacheInfo.BalanceHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if second.Partitioning.Optimum != first.Partitioning.Optimum ||
		!slices.Equal(second.Partitioning.Line, first.Partitioning.Line) {
		t.Error("cached result differs from computed result")
	}
	if second.Partitioning.RunID == first.Partitioning.RunID {
		t.Error("each run should get its own RunID")
	}

	opts := Defaults()
	opts.Refresh = true
	third, err := runner.Execute(ctx, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.ClusterHit || third.CacheInfo.BalanceHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", third.CacheInfo)
	}

	opts = Defaults()
	opts.Seed = 7
	fourth, err := runner.Execute(ctx, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !fourth.CacheInfo.ClusterHit || fourth.CacheInfo.BalanceHit {
		t.Errorf("new seed CacheInfo = %+v, want cluster hit and balance miss", fourth.CacheInfo)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	runner := quietRunner(nil)

	if _, err := runner.Execute(ctx, model.New[string](), Defaults()); !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("empty graph error = %v, want EMPTY_INPUT", err)
	}

	opts := Defaults()
	opts.Partitions = 20
	if _, err := runner.Execute(ctx, twoCommunities(t), opts); err == nil {
		t.Error("more partitions than nodes should fail")
	}

	opts = Defaults()
	opts.Partitions = 3
	opts.OddK = OddReject
	if _, err := runner.Execute(ctx, twoCommunities(t), opts); !errors.Is(err, errors.ErrCodeInvalidPartitionCount) {
		t.Errorf("odd reject error = %v, want INVALID_PARTITION_COUNT", err)
	}
}

// stageRecorder records completed stages and can cancel the run after one.
type stageRecorder struct {
	observability.NoopPipelineHooks
	cancelAfter string
	cancel      context.CancelFunc
	done        []string
	errs        map[string]error
}

func (r *stageRecorder) OnStageComplete(_ context.Context, stage string, _ time.Duration, err error) {
	r.done = append(r.done, stage)
	r.errs[stage] = err
	if stage == r.cancelAfter {
		r.cancel()
	}
}

func TestExecuteStages(t *testing.T) {
	defer observability.Reset()

	rec := &stageRecorder{errs: make(map[string]error)}
	observability.SetPipelineHooks(rec)
	if _, err := quietRunner(nil).Execute(context.Background(), twoCommunities(t), Defaults()); err != nil {
		t.Fatal(err)
	}
	if want := []string{"transform", "coarsen", "embed", "swap", "dp"}; !slices.Equal(rec.done, want) {
		t.Errorf("stages = %v, want %v", rec.done, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec = &stageRecorder{errs: make(map[string]error), cancelAfter: "coarsen", cancel: cancel}
	observability.SetPipelineHooks(rec)
	_, err := quietRunner(nil).Execute(ctx, twoCommunities(t), Defaults())
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Execute error = %v, want context.Canceled", err)
	}
	if !stderrors.Is(rec.errs["embed"], context.Canceled) {
		t.Errorf("embed stage error = %v, want context.Canceled", rec.errs["embed"])
	}
	if slices.Contains(rec.done, "dp") {
		t.Errorf("dp ran after cancellation: %v", rec.done)
	}
}

func TestRenderTextFormats(t *testing.T) {
	opts := Defaults()
	opts.Formats = []string{FormatJSON, FormatCSV, FormatDOT}

	res, err := quietRunner(nil).Execute(context.Background(), twoCommunities(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Artifacts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(res.Artifacts))
	}

	p, err := graph.UnmarshalPartitioning(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if p.Optimum != res.Partitioning.Optimum {
		t.Errorf("json Optimum = %d, want %d", p.Optimum, res.Partitioning.Optimum)
	}

	csv := string(res.Artifacts[FormatCSV])
	if !strings.HasPrefix(csv, "node,partition\n") {
		t.Errorf("csv header missing: %q", csv)
	}
	if got := strings.Count(csv, "\n"); got != 9 {
		t.Errorf("csv has %d lines, want 9", got)
	}

	dot := string(res.Artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "digraph") || !strings.Contains(dot, "cluster_1") {
		t.Errorf("unexpected dot output:\n%s", dot)
	}
}
