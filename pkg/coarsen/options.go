package coarsen

import (
	"io"

	"github.com/charmbracelet/log"
)

// DefaultMaxRounds bounds the number of contraction rounds. Geometric
// contraction is not guaranteed on adversarial graphs, so the loop needs a cap.
const DefaultMaxRounds = 5

// Mode selects which out-edge counts as a vertex's closest neighbor.
type Mode int

const (
	// ModeNearest picks the minimum-weight out-edge. Use it when edge weights
	// are distances or latencies.
	ModeNearest Mode = iota
	// ModeStrongest picks the maximum-weight out-edge. Use it with
	// common-neighbor weights, where a higher count means stronger affinity.
	ModeStrongest
)

// String returns the mode name used in config files and flags.
func (m Mode) String() string {
	if m == ModeStrongest {
		return "strongest"
	}
	return "nearest"
}

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "nearest", "min":
		return ModeNearest, true
	case "strongest", "max":
		return ModeStrongest, true
	}
	return ModeNearest, false
}

// Options configures a coarsening run.
type Options struct {
	// Target is the cluster count at which coarsening stops. Required.
	Target int

	// MaxRounds caps the number of rounds. Zero means DefaultMaxRounds.
	MaxRounds int

	// Mode selects the closest-neighbor rule.
	Mode Mode

	// FragmentRepair forces clusters smaller than 2^round to attach to their
	// lightest neighbor after each round.
	FragmentRepair bool

	// Logger receives per-round debug lines. Nil discards them.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.MaxRounds <= 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}
