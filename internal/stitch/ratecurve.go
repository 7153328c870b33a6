package stitch

import (
	"math"
	"sort"

	"github.com/PesaranB/mind-snag/internal/raster"
)

// RateCurveConfig controls the peri-event time histogram used to build a
// cluster's rate curve (spec 4.F "Pre-compute ... a single 1-D peri-event
// rate curve").
type RateCurveConfig struct {
	WindowL    float64 // ms
	WindowR    float64 // ms
	BinWidth   float64 // ms
	SmoothStd  float64 // ms, Gaussian kernel std
}

// DefaultRateCurveConfig matches spec 4.F's stated window and smoothing
// (Gaussian std 10ms, window [-300,500]ms); bin width is an
// implementation choice fine enough to resolve the smoothing kernel.
func DefaultRateCurveConfig() RateCurveConfig {
	return RateCurveConfig{WindowL: -300, WindowR: 500, BinWidth: 1, SmoothStd: 10}
}

// trialPoint is one trial's spike-time slice and reaction time, already
// flattened out of a raster.ClusterRaster's per-task-type trials.
type trialPoint struct {
	spikeTimesMs []float64
	rtMs         float64
}

// crossTaskTrials flattens a cluster raster's tasks in spec 4.E's fixed
// order into one cross-task trial list (spec 4.F: "sorting the cluster's
// cross-task raster ... by RT ascending").
func crossTaskTrials(cr raster.ClusterRaster) []trialPoint {
	var out []trialPoint
	for _, task := range cr.Tasks {
		for _, tr := range task.Trials {
			out = append(out, trialPoint{spikeTimesMs: tr.SpikeTimesMs, rtMs: tr.RTMs})
		}
	}
	return out
}

// RateCurve computes cluster's Gaussian-smoothed peri-event time
// histogram over its sorted-by-RT cross-task raster, in spikes/second,
// one value per bin across [WindowL, WindowR].
func RateCurve(cfg RateCurveConfig, cr raster.ClusterRaster) []float64 {
	trials := crossTaskTrials(cr)

	// NaN RTs sort after all valid RTs; sort.SliceStable keeps relative
	// order among equal/NaN elements, matching a conventional ascending
	// sort where "RT unknown" trials trail.
	sort.SliceStable(trials, func(i, j int) bool {
		ri, rj := trials[i].rtMs, trials[j].rtMs
		if math.IsNaN(ri) {
			return false
		}
		if math.IsNaN(rj) {
			return true
		}
		return ri < rj
	})

	nBins := int(math.Round((cfg.WindowR-cfg.WindowL)/cfg.BinWidth)) + 1
	counts := make([]float64, nBins)

	nTrials := len(trials)
	if nTrials == 0 {
		return gaussianSmooth(counts, cfg.BinWidth, cfg.SmoothStd)
	}

	for _, tr := range trials {
		for _, t := range tr.spikeTimesMs {
			if t < cfg.WindowL || t > cfg.WindowR {
				continue
			}
			bin := int(math.Round((t - cfg.WindowL) / cfg.BinWidth))
			if bin >= 0 && bin < nBins {
				counts[bin]++
			}
		}
	}

	binWidthSec := cfg.BinWidth / 1000
	rate := make([]float64, nBins)
	for i, c := range counts {
		rate[i] = c / float64(nTrials) / binWidthSec
	}

	return gaussianSmooth(rate, cfg.BinWidth, cfg.SmoothStd)
}

// gaussianSmooth convolves xs with a Gaussian kernel of the given std
// (same units as binWidth), truncated at ±4 std, edge-clamped.
func gaussianSmooth(xs []float64, binWidth, std float64) []float64 {
	if std <= 0 || len(xs) == 0 {
		return xs
	}

	stdBins := std / binWidth
	radius := int(math.Ceil(4 * stdBins))

	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * stdBins * stdBins))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	out := make([]float64, len(xs))
	n := len(xs)
	for i := range xs {
		var acc float64
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 {
				j = 0
			} else if j >= n {
				j = n - 1
			}
			acc += xs[j] * kernel[k+radius]
		}
		out[i] = acc
	}
	return out
}
