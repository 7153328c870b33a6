// Package channel implements the channel selector (spec 4.A): for every
// cluster, pick a best channel (peak template energy, modulated by
// per-spike feature coverage) and a worst channel (low-energy noise
// reference).
package channel

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/PesaranB/mind-snag/internal/spike"
)

// Config holds the selector's tunables (spec 4.A).
type Config struct {
	// Alpha weights energy against coverage in the combined score:
	// S[c] = Alpha*E_norm[c] + (1-Alpha)*Cov_norm[c]. Default 1.0.
	Alpha float64
	// CoverageFloor gates the worst-channel guard. Default 0.1.
	CoverageFloor float64
}

// DefaultConfig matches spec 4.A's stated defaults.
func DefaultConfig() Config {
	return Config{Alpha: 1.0, CoverageFloor: 0.1}
}

// ClusterInput is one cluster's template and PC features, on its own
// local-channel indexing, plus the table translating local to global
// channel ids.
type ClusterInput struct {
	ClusterID  int64
	Template   spike.Template       // Samples[t][localChannel]
	PCFeatures []spike.PCRecord     // one per spike, Components[k][localChannel]
	LocalTable spike.LocalChannelTable
}

// Selection is the channel selector's verdict for one cluster.
type Selection struct {
	ClusterID    int64
	BestChannel  int32 // global
	WorstChannel int32 // global
}

// Select computes the best/worst channel for a single cluster. Returns
// false if the cluster has zero spikes (spec 4.A failure: "omitted from
// the output entirely").
func Select(cfg Config, in ClusterInput) (Selection, bool) {
	nSpikes := len(in.PCFeatures)
	if nSpikes == 0 {
		return Selection{}, false
	}

	nLocal := len(in.LocalTable)
	if nLocal == 0 {
		return Selection{}, false
	}

	energy := make([]float64, nLocal)
	coverage := make([]float64, nLocal)

	for _, row := range in.Template.Samples {
		for c := 0; c < nLocal && c < len(row); c++ {
			v := float64(row[c])
			energy[c] += v * v
		}
	}

	nonZero := make([]int, nLocal)
	for _, f := range in.PCFeatures {
		for c := 0; c < nLocal; c++ {
			if hasNonZero(f, c) {
				nonZero[c]++
			}
		}
	}
	for c := range coverage {
		coverage[c] = float64(nonZero[c]) / float64(nSpikes)
	}

	energyNorm := normalizedToMax(energy)
	coverageNorm := normalizedToMax(coverage)

	score := make([]float64, nLocal)
	for c := range score {
		score[c] = cfg.Alpha*energyNorm[c] + (1-cfg.Alpha)*coverageNorm[c]
	}

	best := argmax(score, nil)
	if coverage[best] < 0.5 {
		restricted := restrictIndices(nLocal, func(c int) bool { return coverage[c] >= 0.5 })
		if len(restricted) > 0 {
			best = argmax(score, restricted)
		}
	}

	worst := argmin(energy, nil)
	if coverage[worst] < cfg.CoverageFloor {
		restricted := restrictIndices(nLocal, func(c int) bool {
			return coverage[c] >= cfg.CoverageFloor && energy[c] > 0
		})
		if len(restricted) > 0 {
			worst = argmin(energy, restricted)
		}
	}

	return Selection{
		ClusterID:    in.ClusterID,
		BestChannel:  in.LocalTable.Global(best),
		WorstChannel: in.LocalTable.Global(worst),
	}, true
}

// SelectAll dispatches Select across clusters on a worker pool (spec 5:
// "embarrassingly parallel across clusters"), returning selections for
// every cluster with at least one spike, in input order.
func SelectAll(ctx context.Context, cfg Config, inputs []ClusterInput) ([]Selection, error) {
	out := make([]*Selection, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if sel, ok := Select(cfg, in); ok {
				out[i] = &sel
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]Selection, 0, len(out))
	for _, s := range out {
		if s != nil {
			result = append(result, *s)
		}
	}
	return result, nil
}

func hasNonZero(f spike.PCRecord, c int) bool {
	for k := 0; k < 3; k++ {
		if c < len(f.Components[k]) && f.Components[k][c] != 0 {
			return true
		}
	}
	return false
}

// normalizedToMax divides every element by the slice's max, per spec 4.A
// ("Normalize each to its own maximum across local channels"). A
// zero-everywhere slice stays zero.
func normalizedToMax(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	m := floats.Max(xs)
	out := make([]float64, len(xs))
	if m == 0 {
		return out
	}
	for i, v := range xs {
		out[i] = v / m
	}
	return out
}

func restrictIndices(n int, keep func(int) bool) []int {
	var idx []int
	for c := 0; c < n; c++ {
		if keep(c) {
			idx = append(idx, c)
		}
	}
	return idx
}

// argmax returns the index of the maximum value in xs, restricted to
// candidates if non-nil.
func argmax(xs []float64, candidates []int) int {
	if candidates == nil {
		best, bestVal := 0, math.Inf(-1)
		for i, v := range xs {
			if v > bestVal {
				best, bestVal = i, v
			}
		}
		return best
	}
	best, bestVal := candidates[0], math.Inf(-1)
	for _, i := range candidates {
		if xs[i] > bestVal {
			best, bestVal = i, xs[i]
		}
	}
	return best
}

// argmin returns the index of the minimum value in xs, restricted to
// candidates if non-nil.
func argmin(xs []float64, candidates []int) int {
	if candidates == nil {
		best, bestVal := 0, math.Inf(1)
		for i, v := range xs {
			if v < bestVal {
				best, bestVal = i, v
			}
		}
		return best
	}
	best, bestVal := candidates[0], math.Inf(1)
	for _, i := range candidates {
		if xs[i] < bestVal {
			best, bestVal = i, xs[i]
		}
	}
	return best
}
