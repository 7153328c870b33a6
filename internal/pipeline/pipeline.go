// Package pipeline wires the core components (spec 2's data-flow table)
// into one per-session run: A feeds B/C/E/F, B's drift-corrected stream
// feeds C/E/F, C's verdicts feed D, D and E feed F.
package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/PesaranB/mind-snag/internal/channel"
	"github.com/PesaranB/mind-snag/internal/config"
	"github.com/PesaranB/mind-snag/internal/container"
	"github.com/PesaranB/mind-snag/internal/geometry"
	"github.com/PesaranB/mind-snag/internal/isolated"
	"github.com/PesaranB/mind-snag/internal/isolation"
	"github.com/PesaranB/mind-snag/internal/pipelineerr"
	"github.com/PesaranB/mind-snag/internal/raster"
	"github.com/PesaranB/mind-snag/internal/spike"
	"github.com/PesaranB/mind-snag/internal/stitch"
	"github.com/PesaranB/mind-snag/internal/timebase"
)

// RecordingInput bundles one recording's raw inputs: its timing metadata,
// its sorter output (already parsed into per-cluster shape by the
// sortread adapter), and its trial list.
type RecordingInput struct {
	Recording spike.Recording
	RawSpikes []timebase.RawSpike
	Clusters  []channel.ClusterInput // keyed by ClusterID
	Quality   map[int64]spike.QualityLabel
	Trials    []raster.Trial
}

// RecordingResult is everything one recording produces.
type RecordingResult struct {
	RecordingID      string
	Events           []spike.Event
	ClusterTable     []spike.Cluster
	Isolation        map[int64][]spike.IsolationFrame
	IsolatedEvents   []spike.Event
	IsolatedClusters []spike.Cluster
	Rasters          map[int64]raster.ClusterRaster
	// Waveforms holds each cluster's template trace on its own best
	// channel, the equal-length 1-D vector spec 4.F's precompute step
	// needs for waveform correlation.
	Waveforms map[int64][]float64
}

// RunRecording runs components A, B, C, D, E for a single recording
// group (spec 2: A feeds B/C/E/F; B's output feeds C/E/F; C feeds D).
func RunRecording(ctx context.Context, logger *log.Logger, cfg config.Config, group spike.Group, recIndex int, in RecordingInput) (RecordingResult, error) {
	recLogger := logger.With("recording", in.Recording.ID)

	// A: channel selection, per cluster.
	chanCfg := channel.Config{Alpha: cfg.Channel.Alpha, CoverageFloor: cfg.Channel.CoverageFloor}
	selections, err := channel.SelectAll(ctx, chanCfg, in.Clusters)
	if err != nil {
		return RecordingResult{}, fmt.Errorf("channel selection for recording %s: %w", in.Recording.ID, err)
	}

	clusterTable := make([]spike.Cluster, 0, len(selections))
	bestChannelOf := make(map[int64]int32, len(selections))
	for _, sel := range selections {
		q := in.Quality[sel.ClusterID]
		clusterTable = append(clusterTable, spike.Cluster{
			ID: sel.ClusterID, BestChannel: sel.BestChannel, WorstChannel: sel.WorstChannel, Quality: q,
		})
		bestChannelOf[sel.ClusterID] = sel.BestChannel
	}

	// B: timebase reprojection.
	reprojected := timebase.Reproject(recLogger, group, in.RawSpikes)

	var events []spike.Event
	perCluster := make(map[int64][]timebase.Reprojected)
	for _, r := range reprojected {
		if r.RecordingIndex != recIndex {
			continue
		}
		events = append(events, r.Event)
		perCluster[r.Event.ClusterID] = append(perCluster[r.Event.ClusterID], r)
	}

	// C: isolation scoring, per cluster, with neighbor context (clusters
	// sharing the scored cluster's best channel).
	isoInputs := make([]isolation.ClusterInput, 0, len(selections))
	for _, sel := range selections {
		spikesForCluster := perCluster[sel.ClusterID]
		times := make([]float64, len(spikesForCluster))
		pcs := make([]spike.PCRecord, len(spikesForCluster))
		for i, s := range spikesForCluster {
			times[i] = s.Event.Time
			pcs[i] = s.PC
		}

		localTable := localTableFor(in.Clusters, sel.ClusterID)

		var neighbors []isolation.Neighbor
		for _, other := range selections {
			if other.ClusterID == sel.ClusterID || other.BestChannel != sel.BestChannel {
				continue
			}
			otherSpikes := perCluster[other.ClusterID]
			otherTimes := make([]float64, len(otherSpikes))
			otherPC := make([]spike.PCRecord, len(otherSpikes))
			for i, s := range otherSpikes {
				otherTimes[i] = s.Event.Time
				otherPC[i] = s.PC
			}
			neighbors = append(neighbors, isolation.Neighbor{
				ClusterID: other.ClusterID,
				IsGood:    in.Quality[other.ClusterID] == spike.QualityGood,
				PC:        otherPC,
				Times:     otherTimes,
			})
		}

		isoInputs = append(isoInputs, isolation.ClusterInput{
			ClusterID:   sel.ClusterID,
			Times:       times,
			PC:          pcs,
			LocalTable:  localTable,
			BestGlobal:  sel.BestChannel,
			WorstGlobal: sel.WorstChannel,
			Neighbors:   neighbors,
		})
	}

	isoCfg := isolation.Config{WindowSec: cfg.Isolation.WindowSec}
	isoFrames, err := isolation.ScoreAll(ctx, isoCfg, isoInputs)
	if err != nil {
		return RecordingResult{}, fmt.Errorf("isolation scoring for recording %s: %w", in.Recording.ID, err)
	}

	// D: isolated-unit selection.
	isoEvents, isoClusters := isolated.Select(events, clusterTable, isoFrames)

	// Best-channel waveform trace per cluster, for the stitcher's
	// waveform-correlation term (spec 4.F precompute step).
	waveforms := make(map[int64][]float64, len(selections))
	for _, sel := range selections {
		ci := clusterInputFor(in.Clusters, sel.ClusterID)
		if ci == nil {
			continue
		}
		localBest := localIndexOfGlobal(ci.LocalTable, sel.BestChannel)
		if localBest < 0 {
			continue
		}
		trace := ci.Template.ChannelOf(localBest)
		w := make([]float64, len(trace))
		for i, v := range trace {
			w[i] = float64(v)
		}
		waveforms[sel.ClusterID] = w
	}

	// E: trial-aligned rasters, per cluster, including neighbor rasters.
	rasters := make(map[int64]raster.ClusterRaster, len(selections))
	for _, sel := range selections {
		spikesForCluster := perCluster[sel.ClusterID]
		timesSec := make([]float64, len(spikesForCluster))
		for i, s := range spikesForCluster {
			timesSec[i] = s.Event.Time
		}

		var neighborSpikes []raster.ClusterSpikes
		for _, other := range selections {
			if other.ClusterID == sel.ClusterID || other.BestChannel != sel.BestChannel {
				continue
			}
			otherSpikesForCluster := perCluster[other.ClusterID]
			otherTimesSec := make([]float64, len(otherSpikesForCluster))
			for i, s := range otherSpikesForCluster {
				otherTimesSec[i] = s.Event.Time
			}
			neighborSpikes = append(neighborSpikes, raster.ClusterSpikes{ClusterID: other.ClusterID, TimesSec: otherTimesSec})
		}

		rasters[sel.ClusterID] = raster.BuildClusterRaster(
			raster.ClusterSpikes{ClusterID: sel.ClusterID, TimesSec: timesSec},
			in.Trials,
			neighborSpikes,
		)
	}

	recLogger.Info("recording processed", "spikes", len(events), "clusters", len(clusterTable))

	return RecordingResult{
		RecordingID:      in.Recording.ID,
		Events:           events,
		ClusterTable:     clusterTable,
		Isolation:        isoFrames,
		IsolatedEvents:   isoEvents,
		IsolatedClusters: isoClusters,
		Rasters:          rasters,
		Waveforms:        waveforms,
	}, nil
}

func localTableFor(clusters []channel.ClusterInput, id int64) spike.LocalChannelTable {
	ci := clusterInputFor(clusters, id)
	if ci == nil {
		return nil
	}
	return ci.LocalTable
}

func clusterInputFor(clusters []channel.ClusterInput, id int64) *channel.ClusterInput {
	for i := range clusters {
		if clusters[i].ClusterID == id {
			return &clusters[i]
		}
	}
	return nil
}

func localIndexOfGlobal(table spike.LocalChannelTable, global int32) int {
	for i, g := range table {
		if g == global {
			return i
		}
	}
	return -1
}

// PersistRecording writes B's initial spike-stream write and D's append,
// per spec 5's single-writer-at-a-time rule for that container.
func PersistRecording(w container.Writer, name string, res RecordingResult) error {
	var s container.SpikeStream
	s.WriteInitial(res.Events, res.ClusterTable)
	s.AppendIsolated(res.IsolatedEvents, res.IsolatedClusters)
	return w.WriteGob(name, &s)
}

// SessionInput bundles every recording's results for F's cross-recording
// matching step.
type SessionInput struct {
	Recordings []RecordingResult
	Probe      geometry.Probe
	Scope      stitch.Scope
	Thresholds stitch.Thresholds
}

// RunStitch runs component F over a session's recordings (spec 2: F
// consumes A/B/C/D/E's outputs depending on scope).
func RunStitch(ctx context.Context, in SessionInput) ([]spike.StitchRow, error) {
	var candidates []stitch.Candidate

	for ri, rec := range in.Recordings {
		eligible := eligibleClusters(rec, in.Scope)
		for _, c := range eligible {
			rasterRec, ok := rec.Rasters[c.ID]
			if !ok {
				continue
			}
			rate := stitch.RateCurve(stitch.DefaultRateCurveConfig(), rasterRec)
			wf := rec.Waveforms[c.ID] // nil if unavailable: spec 4.F treats a missing waveform as an all-NaN vector, already a losing candidate
			candidates = append(candidates, stitch.Candidate{
				RecordingIndex: ri,
				ClusterID:      c.ID,
				BestChannel:    c.BestChannel,
				Waveform:       wf,
				RateCurve:      rate,
			})
		}
	}

	sc := stitch.Context{
		NumRecordings: len(in.Recordings),
		Probe:         in.Probe,
		Thresholds:    in.Thresholds,
	}

	return stitch.Stitch(ctx, sc, candidates)
}

func eligibleClusters(rec RecordingResult, scope stitch.Scope) []spike.Cluster {
	switch scope {
	case stitch.ScopeIsolated:
		return rec.IsolatedClusters
	case stitch.ScopeGood:
		var out []spike.Cluster
		for _, c := range rec.ClusterTable {
			if c.Quality == spike.QualityGood {
				out = append(out, c)
			}
		}
		return out
	default:
		return rec.ClusterTable
	}
}

// ContractViolation wraps pipelineerr.ErrContractViolation for a cluster
// id referenced by a scope filter that is absent from a recording's
// cluster table (spec 7 kind 5: fatal, names the offending recording and
// cluster).
func ContractViolation(recordingID string, clusterID int64) error {
	return fmt.Errorf("%w: cluster %d not found in recording %s", pipelineerr.ErrContractViolation, clusterID, recordingID)
}
