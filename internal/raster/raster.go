// Package raster implements the trial-aligned raster builder (spec 4.E):
// for every cluster and task type, slice spike times into per-trial
// windows aligned to an event, with a primary/fallback event policy, and
// also build rasters for neighbor clusters sharing the cluster's best
// channel.
package raster

import "math"

// EventTime is a trial event's time (behavioral clock ms), explicitly
// optional per spec 9's redesign note ("absence is represented
// explicitly, not by exception").
type EventTime struct {
	Value float64
	Valid bool
}

// Present wraps a known event time.
func Present(ms float64) EventTime { return EventTime{Value: ms, Valid: true} }

// Missing is the absent-event sentinel.
var Missing = EventTime{}

// Trial is one behavioral trial: a task-type tag and a mapping from
// event-name to optional time, both in the recording's behavioral clock.
type Trial struct {
	RecordingID string
	TrialIndex  int
	TaskType    Tag
	Events      map[string]EventTime
	// The Touch task's special-case RT rule (spec 4.E step 3) reads the
	// "StartOn" and "End" events from Events like any other event name.
}

func (t Trial) event(name string) EventTime {
	if name == "" {
		return Missing
	}
	if ev, ok := t.Events[name]; ok {
		return ev
	}
	return Missing
}

// TrialSlice is one trial's spike-time slice (ms, relative to the
// alignment event) and its reaction time.
type TrialSlice struct {
	SpikeTimesMs []float64
	RTMs         float64 // math.NaN() if undefined
}

// TaskRaster is one task type's per-trial slices for one cluster.
type TaskRaster struct {
	Tag    Tag
	Trials []TrialSlice
}

// ClusterRaster is the full per-cluster raster record: per-task-type
// trial slices in spec 4.E's fixed concatenation order, plus a raster
// record for every neighbor cluster sharing this cluster's best channel.
type ClusterRaster struct {
	ClusterID int64
	Tasks     []TaskRaster
	Neighbors []NeighborRaster
}

// NeighborRaster is one neighbor cluster's raster, built by the same
// procedure as the owning cluster's but with the CO primary/fallback
// swap (spec 4.E).
type NeighborRaster struct {
	ClusterID int64
	Tasks     []TaskRaster
}

// ClusterSpikes is one cluster's reprojected spike times in behavioral
// seconds, as consumed by the raster builder.
type ClusterSpikes struct {
	ClusterID  int64
	TimesSec   []float64
}

// BuildClusterRaster builds the full raster record for one cluster: its
// own per-task rasters plus neighbor rasters for every cluster sharing
// its best channel (spec 4.E).
func BuildClusterRaster(cluster ClusterSpikes, trials []Trial, neighbors []ClusterSpikes) ClusterRaster {
	out := ClusterRaster{
		ClusterID: cluster.ClusterID,
		Tasks:     buildAllTasks(cluster.TimesSec, trials, false),
	}

	for _, n := range neighbors {
		out.Neighbors = append(out.Neighbors, NeighborRaster{
			ClusterID: n.ClusterID,
			Tasks:     buildAllTasks(n.TimesSec, trials, true),
		})
	}

	return out
}

func buildAllTasks(spikesSec []float64, trials []Trial, neighborAsymmetry bool) []TaskRaster {
	spikesMs := make([]float64, len(spikesSec))
	for i, t := range spikesSec {
		spikesMs[i] = t * 1000
	}

	out := make([]TaskRaster, 0, len(Order))
	for _, tag := range Order {
		def := Table[tag]
		if neighborAsymmetry && tag == TagCO {
			def = coAsymmetricNeighborDef()
		}
		matching := trialsOfType(trials, tag)
		out = append(out, buildTaskRaster(def, matching, spikesMs))
	}
	return out
}

func trialsOfType(trials []Trial, tag Tag) []Trial {
	var out []Trial
	for _, t := range trials {
		if t.TaskType == tag {
			out = append(out, t)
		}
	}
	return out
}

// buildTaskRaster implements spec 4.E's per-task algorithm. It is the
// single implementation every tag in Table drives, eliminating the
// per-tag try/primary/fallback branching spec 9 flags as a code smell in
// the source this was ported from.
func buildTaskRaster(def Def, trials []Trial, spikesMs []float64) TaskRaster {
	if len(trials) == 0 {
		return TaskRaster{Tag: def.Tag}
	}

	alignEvent := resolveEvent(trials, def.Primary, def.Fallback)
	slices := sliceTrials(trials, alignEvent, def.WindowL, def.WindowR, spikesMs)
	rts := computeRTs(def, trials, alignEvent)

	for i := range slices {
		slices[i].RTMs = rts[i]
	}

	if def.Tag == TagTouch && allNaN(rts) {
		alignEvent = "StartOn"
		slices = sliceTrials(trials, alignEvent, def.WindowL, def.WindowR, spikesMs)
		for i, tr := range trials {
			slices[i].RTMs = rtOf(tr.event("StartOn"), tr.event("End"))
		}
	}

	return TaskRaster{Tag: def.Tag, Trials: slices}
}

// resolveEvent picks primary unless it is absent on every trial, in which
// case it retries with fallback (spec 4.E step 2).
func resolveEvent(trials []Trial, primary, fallback string) string {
	for _, t := range trials {
		if t.event(primary).Valid {
			return primary
		}
	}
	if fallback != "" {
		return fallback
	}
	return primary
}

func sliceTrials(trials []Trial, eventName string, l, r float64, spikesMs []float64) []TrialSlice {
	out := make([]TrialSlice, len(trials))
	for i, t := range trials {
		ev := t.event(eventName)
		if !ev.Valid {
			out[i] = TrialSlice{RTMs: math.NaN()}
			continue
		}
		var sel []float64
		for _, sMs := range spikesMs {
			rel := sMs - ev.Value
			if rel >= l && rel <= r {
				sel = append(sel, rel)
			}
		}
		out[i] = TrialSlice{SpikeTimesMs: sel, RTMs: math.NaN()}
	}
	return out
}

func computeRTs(def Def, trials []Trial, alignEvent string) []float64 {
	out := make([]float64, len(trials))

	if def.RTNumerator == "" {
		// Null task: no RT defined; emit a length-matched NaN vector
		// (DESIGN.md Open Question decision 3) rather than an empty
		// slice, so callers can always zip by trial index.
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	denomEvent := def.RTDenomPrimary
	if def.RTDenominatorIsAlignEvent {
		denomEvent = alignEvent
	} else if denomEvent != "" {
		denomEvent = resolveEvent(trials, def.RTDenomPrimary, def.RTDenomFallback)
	}

	for i, t := range trials {
		out[i] = rtOf(t.event(def.RTNumerator), t.event(denomEvent))
	}
	return out
}

func rtOf(numerator, denominator EventTime) float64 {
	if !numerator.Valid || !denominator.Valid {
		return math.NaN()
	}
	return numerator.Value - denominator.Value
}

func allNaN(xs []float64) bool {
	for _, x := range xs {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}
