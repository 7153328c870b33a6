// Package isolation implements the isolation scorer (spec 4.C): for each
// cluster, slice its spikes into fixed-length time windows and compute a
// scalar discriminability between the cluster's principal-component
// projections on its best channel and the same cluster's projections on
// its worst channel.
package isolation

import (
	"context"
	"math"
	"runtime"

	"github.com/golang/geo/r1"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/PesaranB/mind-snag/internal/spike"
)

// Config holds the scorer's one tunable, spec 4.C's window length Δ.
type Config struct {
	WindowSec float64
}

// DefaultConfig matches spec 4.C's stated default (Δ = 100s).
func DefaultConfig() Config {
	return Config{WindowSec: 100}
}

// Neighbor is one other cluster sharing this cluster's best channel, with
// its quality label and all of its PC vectors and spike times; each frame
// keeps (for inspection) only the PC vectors whose time falls in its window.
type Neighbor struct {
	ClusterID int64
	IsGood    bool
	PC        []spike.PCRecord // same ordering as Times
	Times     []float64
}

// ClusterInput is one cluster's reprojected spike times, PC features,
// channel indices (already resolved to this cluster's local-channel
// table), and neighbor context.
type ClusterInput struct {
	ClusterID    int64
	Times        []float64 // behavioral seconds, len == len(PC)
	PC           []spike.PCRecord
	LocalTable   spike.LocalChannelTable
	BestGlobal   int32
	WorstGlobal  int32
	TemplateBest  []float32
	TemplateWorst []float32
	Neighbors    []Neighbor
}

// Score computes every time-window frame for a single cluster, per spec
// 4.C. If the cluster has zero spikes, it emits exactly one empty frame
// with score = NaN and verdict = not-isolated (spec 4.C failure path).
func Score(cfg Config, in ClusterInput) []spike.IsolationFrame {
	if len(in.Times) == 0 {
		return []spike.IsolationFrame{emptyFrame(0, 0, cfg.WindowSec)}
	}

	idxBest := localIndexOf(in.LocalTable, in.BestGlobal)
	idxWorst := localIndexOf(in.LocalTable, in.WorstGlobal)

	maxT := 0.0
	for _, t := range in.Times {
		if t > maxT {
			maxT = t
		}
	}

	nWindows := int(math.Ceil(maxT / cfg.WindowSec))
	if nWindows == 0 {
		nWindows = 1
	}

	frames := make([]spike.IsolationFrame, nWindows)
	for w := 0; w < nWindows; w++ {
		win := r1.Interval{Lo: float64(w) * cfg.WindowSec, Hi: float64(w+1) * cfg.WindowSec}

		var signal, noise [][3]float64
		var sel []int
		for s, t := range in.Times {
			if t < win.Lo || t > win.Hi {
				continue
			}
			sel = append(sel, s)
			scaled := in.PC[s].Scaled()
			signal = append(signal, pick3(scaled, idxBest))
			noise = append(noise, pick3(scaled, idxWorst))
		}

		if len(sel) == 0 {
			frames[w] = emptyFrame(w, win.Lo, win.Hi)
			frames[w].TemplateBest = in.TemplateBest
			frames[w].TemplateWorst = in.TemplateWorst
			frames[w].Neighbors = neighborInfos(in.Neighbors)
			frames[w].NeighborWindowPC = neighborWindowPC(in.Neighbors, win)
			continue
		}

		var muSignal, muNoise, sigmaNoise [3]float64
		for k := 0; k < 3; k++ {
			sCol := column(signal, k)
			nCol := column(noise, k)
			muSignal[k] = stat.Mean(sCol, nil)
			muNoise[k], sigmaNoise[k] = stat.MeanStdDev(nCol, nil)
		}

		score := math.NaN() // stays NaN for a zero-variance noise channel
		if sigmaNoise[0] != 0 {
			score = math.Abs(muSignal[0]-muNoise[0]) / sigmaNoise[0]
		}

		frames[w] = spike.IsolationFrame{
			WindowIndex:   w,
			WindowStart:   win.Lo,
			WindowEnd:     win.Hi,
			Score:         score,
			SignalMean:    muSignal,
			NoiseMean:     muNoise,
			NoiseStd:      sigmaNoise,
			Verdict:       spike.NotIsolated,
			TemplateBest:     in.TemplateBest,
			TemplateWorst:    in.TemplateWorst,
			Neighbors:        neighborInfos(in.Neighbors),
			NeighborWindowPC: neighborWindowPC(in.Neighbors, win),
		}
	}

	return frames
}

// ScoreAll dispatches Score across clusters on a worker pool (spec 5).
func ScoreAll(ctx context.Context, cfg Config, inputs []ClusterInput) (map[int64][]spike.IsolationFrame, error) {
	out := make([][]spike.IsolationFrame, len(inputs))

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
			out[i] = Score(cfg, in)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[int64][]spike.IsolationFrame, len(inputs))
	for i, in := range inputs {
		result[in.ClusterID] = out[i]
	}
	return result, nil
}

func emptyFrame(w int, lo, hi float64) spike.IsolationFrame {
	return spike.IsolationFrame{
		WindowIndex: w,
		WindowStart: lo,
		WindowEnd:   hi,
		Score:       math.NaN(),
		Verdict:     spike.NotIsolated,
	}
}

func localIndexOf(table spike.LocalChannelTable, global int32) int {
	for i, g := range table {
		if g == global {
			return i
		}
	}
	return -1
}

func pick3(scaled [3][]float32, localIdx int) [3]float64 {
	var out [3]float64
	if localIdx < 0 {
		return out
	}
	for k := 0; k < 3; k++ {
		if localIdx < len(scaled[k]) {
			out[k] = float64(scaled[k][localIdx])
		}
	}
	return out
}

func column(rows [][3]float64, k int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[k]
	}
	return out
}

func neighborWindowPC(ns []Neighbor, win r1.Interval) map[int64][]spike.PCRecord {
	if len(ns) == 0 {
		return nil
	}
	out := make(map[int64][]spike.PCRecord, len(ns))
	for _, n := range ns {
		var subset []spike.PCRecord
		for i, t := range n.Times {
			if t >= win.Lo && t <= win.Hi && i < len(n.PC) {
				subset = append(subset, n.PC[i])
			}
		}
		out[n.ClusterID] = subset
	}
	return out
}

func neighborInfos(ns []Neighbor) []spike.NeighborInfo {
	out := make([]spike.NeighborInfo, len(ns))
	for i, n := range ns {
		out[i] = spike.NeighborInfo{ClusterID: n.ClusterID, IsGood: n.IsGood}
	}
	return out
}
