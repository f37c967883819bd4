package cache

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// CoarsenKey addresses the cluster structure computed for a graph.
	CoarsenKey(graphHash string, opts CoarsenKeyOpts) string

	// PartitionKey addresses the balanced split of a line.
	PartitionKey(lineHash string, opts PartitionKeyOpts) string
}

// CoarsenKeyOpts lists every option that changes the coarsening result.
type CoarsenKeyOpts struct {
	Clusters        int    `json:"clusters"`
	Mode            string `json:"mode"`
	MaxRounds       int    `json:"max_rounds"`
	FragmentRepair  bool   `json:"fragment_repair"`
	CommonNeighbors bool   `json:"common_neighbors"`
	Order           string `json:"order"`
}

// PartitionKeyOpts lists every option that changes the partition result.
type PartitionKeyOpts struct {
	Partitions int    `json:"partitions"`
	RankSwap   bool   `json:"rank_swap"`
	Intervals  int    `json:"intervals"`
	Seed       uint64 `json:"seed"`
	OddK       string `json:"odd_k"`
}

// partitionCostModel is hashed into partition keys. Bump it when the DP cost
// accounting changes so stale entries stop matching.
const partitionCostModel = 2

// DefaultKeyer produces "stage:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CoarsenKey implements [Keyer].
func (DefaultKeyer) CoarsenKey(graphHash string, opts CoarsenKeyOpts) string {
	return hashKey("coarsen", graphHash, opts)
}

// PartitionKey implements [Keyer].
func (DefaultKeyer) PartitionKey(lineHash string, opts PartitionKeyOpts) string {
	return hashKey("partition", lineHash, opts, partitionCostModel)
}
