// Package coarsen implements affinity coarsening: repeated rounds in which every
// cluster merges with its closest neighbor until a target cluster count is
// reached.
//
// # Rounds
//
// Each round runs the same steps over the current contracted graph:
//
//  1. Every vertex with an outgoing edge picks its closest neighbor, the
//     lightest out-edge in [ModeNearest] or the heaviest in [ModeStrongest].
//  2. Mutual closest neighbors merge directly. Any other vertex first resolves
//     its neighbor's chain and then joins whatever cluster the neighbor ended
//     up in. Chains are walked iteratively with a per-round visited set, so
//     cycles of any length terminate.
//  3. Edges are rewritten onto cluster roots and self-loops are dropped.
//  4. With [Options.FragmentRepair], clusters smaller than 2^round attach to
//     the target of their lightest outgoing edge, and edges are rewritten again.
//
// Coarsening stops once at most [Options.Target] clusters remain, after
// [Options.MaxRounds] rounds, or when a round changes nothing. The last two
// are reported through [Result.Converged] rather than as errors.
//
// # Usage
//
//	res, err := coarsen.Coarsen(ctx, m, coarsen.Options{
//	    Target:         30,
//	    Mode:           coarsen.ModeStrongest,
//	    FragmentRepair: true,
//	})
//	if err != nil {
//	    return err
//	}
//	line := embed.FromResult(res, embed.OrderRootID)
//
// Use ModeStrongest together with transform.CommonNeighbors, whose edge weights
// grow with affinity.
package coarsen
