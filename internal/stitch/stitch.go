// Package stitch implements the neuron stitcher (spec 4.F): across a set
// of recordings from one session, match clusters that are on nearby
// electrodes and have highly correlated waveforms and peri-event rate
// curves, deduplicate, and filter by minimum appearance count.
package stitch

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/PesaranB/mind-snag/internal/geometry"
	"github.com/PesaranB/mind-snag/internal/spike"
)

// Scope selects which clusters are eligible for stitching (spec 4.F
// inputs).
type Scope int

const (
	ScopeAll Scope = iota
	ScopeGood
	ScopeIsolated
)

// Thresholds holds the stitcher's configurable knobs (spec 6 config
// surface: stitching.fr_corr_threshold, stitching.wf_corr_threshold,
// stitching.min_recordings, stitching.channel_range).
type Thresholds struct {
	FRCorr        float64
	WFCorr        float64
	MinRecordings int
	ChannelRange  int32 // ρ
}

// Candidate is one in-scope cluster's precomputed best channel, waveform,
// and rate curve, as required by spec 4.F's precompute step.
type Candidate struct {
	RecordingIndex int
	ClusterID      int64
	BestChannel    int32
	Waveform       []float64
	RateCurve      []float64
}

// Context bundles the session-wide state stitching helpers need, as an
// explicit value instead of closures over shared configuration. Stitch
// takes it by value and passes a copy to stitchChannel; the helpers are
// plain functions, not methods, and bestMatch receives only Thresholds.
type Context struct {
	NumRecordings int
	Probe         geometry.Probe
	Thresholds    Thresholds
}

// Stitch runs spec 4.F's full algorithm over a flat candidate list
// (already scope-filtered by the caller) and returns the deduplicated,
// count-filtered stitch table.
func Stitch(ctx context.Context, sc Context, candidates []Candidate) ([]spike.StitchRow, error) {
	byRecording := groupByRecording(candidates, sc.NumRecordings)

	channels := candidateChannels(candidates)

	rowsByChannel := make([][]spike.StitchRow, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, c := range channels {
		i, c := i, c
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rowsByChannel[i] = stitchChannel(sc, c, byRecording)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []spike.StitchRow
	for _, rs := range rowsByChannel {
		rows = append(rows, rs...)
	}

	rows = dedup(rows)
	rows = filterByCount(rows, sc.Thresholds.MinRecordings)
	return rows, nil
}

// stitchChannel runs step 2 of spec 4.F for a single candidate channel.
func stitchChannel(sc Context, c int32, byRecording [][]Candidate) []spike.StitchRow {
	neighborhood := sc.Probe.Neighborhood(c, sc.Thresholds.ChannelRange)
	inNeighborhood := make(map[int32]bool, len(neighborhood))
	for _, ch := range neighborhood {
		inNeighborhood[ch] = true
	}

	// N_r per recording: in-scope clusters whose best channel lies in
	// the neighborhood.
	nByRecording := make([][]Candidate, len(byRecording))
	for r, cands := range byRecording {
		for _, cand := range cands {
			if inNeighborhood[cand.BestChannel] {
				nByRecording[r] = append(nByRecording[r], cand)
			}
		}
	}

	var rows []spike.StitchRow
	for r, cands := range byRecording {
		for _, q := range cands {
			if q.BestChannel != c {
				continue
			}

			row := make(spike.StitchRow, sc.NumRecordings)
			for i := range row {
				row[i] = spike.NotFound
			}
			row[r] = q.ClusterID

			for rp := range byRecording {
				if rp == r {
					continue
				}
				match := bestMatch(q, nByRecording[rp], sc.Thresholds)
				if match != nil {
					row[rp] = match.ClusterID
				}
			}

			rows = append(rows, row)
		}
	}
	return rows
}

// bestMatch implements spec 4.F's per-candidate-recording matching rule:
// argmax rate-curve correlation, accepted only if both the rate and
// waveform correlations clear their thresholds.
func bestMatch(q Candidate, pool []Candidate, th Thresholds) *Candidate {
	if len(pool) == 0 {
		return nil
	}

	bestIdx := -1
	bestFR := math.Inf(-1)
	for i, cand := range pool {
		fr := withNegInfForNaN(pairwiseCompleteCorr(q.RateCurve, cand.RateCurve))
		if fr > bestFR {
			bestFR, bestIdx = fr, i
		}
	}

	if bestIdx < 0 {
		return nil
	}

	best := pool[bestIdx]
	wf := withNegInfForNaN(pairwiseCompleteCorr(q.Waveform, best.Waveform))

	if bestFR >= th.FRCorr && wf >= th.WFCorr {
		return &best
	}
	return nil
}

func groupByRecording(candidates []Candidate, numRecordings int) [][]Candidate {
	out := make([][]Candidate, numRecordings)
	for _, c := range candidates {
		if c.RecordingIndex < 0 || c.RecordingIndex >= numRecordings {
			continue
		}
		out[c.RecordingIndex] = append(out[c.RecordingIndex], c)
	}
	return out
}

// candidateChannels computes C*, the union over recordings of best
// channels of in-scope clusters (spec 4.F step 1), in ascending order for
// deterministic output.
func candidateChannels(candidates []Candidate) []int32 {
	seen := make(map[int32]bool)
	var out []int32
	for _, c := range candidates {
		if !seen[c.BestChannel] {
			seen[c.BestChannel] = true
			out = append(out, c.BestChannel)
		}
	}
	// ascending order, simple insertion sort since channel counts are
	// small relative to spike counts elsewhere in this pipeline.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// dedup implements spec 4.F step 3: keep one representative per
// equivalence class, first occurrence wins.
func dedup(rows []spike.StitchRow) []spike.StitchRow {
	var out []spike.StitchRow
	for _, r := range rows {
		dup := false
		for _, kept := range out {
			if r.EqualModuloNotFound(kept) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// filterByCount implements spec 4.F step 4.
func filterByCount(rows []spike.StitchRow, m int) []spike.StitchRow {
	var out []spike.StitchRow
	for _, r := range rows {
		if r.NonEmptyCount() >= m {
			out = append(out, r)
		}
	}
	return out
}
