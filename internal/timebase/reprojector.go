// Package timebase implements the timebase reprojector (spec 4.B): a
// two-stage affine map from probe-clock samples through an auxiliary
// clock into the behavioral clock, segmenting a concatenated spike
// stream per sub-recording.
package timebase

import (
	"github.com/charmbracelet/log"
	"github.com/golang/geo/r1"

	"github.com/PesaranB/mind-snag/internal/spike"
)

// RawSpike is one spike as it arrives from the upstream sorter, still in
// probe-clock samples.
type RawSpike struct {
	TimeSample int64
	ClusterID  int64
	PC         spike.PCRecord
}

// Reprojected is one spike after the two-stage affine transform, carrying
// which recording it belongs to.
type Reprojected struct {
	RecordingIndex int
	Event          spike.Event
	PC             spike.PCRecord
}

// Reproject applies spec 4.B's algorithm to a raw spike stream against an
// ordered recording group. Within each recording the output preserves
// input order (spec 4.B "Ordering guarantee"); across recordings the
// result is simply concatenated per-recording in group order.
//
// A recording missing AuxToBehavioral only gets the auxiliary-clock
// affine stage applied; logger receives a warning and the pipeline
// continues for that recording's spikes (spec 4.B failure path).
func Reproject(logger *log.Logger, group spike.Group, spikes []RawSpike) []Reprojected {
	windows := windowsFor(group)

	out := make([]Reprojected, 0, len(spikes))
	theta := 0.0

	for k, rec := range group.Recordings {
		window := windows[k]

		for _, s := range spikes {
			tSec := float64(s.TimeSample) / rec.SampleRate
			if !window.contains(tSec) {
				continue
			}

			u := tSec - theta
			v := rec.ProbeToAux.Apply(u)

			var tBehavioral float64
			if rec.AuxToBehavioral != nil {
				tBehavioral = rec.AuxToBehavioral.Apply(v)
			} else {
				if logger != nil {
					logger.Warn("aux_to_behavioral missing, emitting auxiliary-clock time",
						"recording", rec.ID, "cluster", s.ClusterID)
				}
				tBehavioral = v
			}

			out = append(out, Reprojected{
				RecordingIndex: k,
				Event:          spike.Event{Time: tBehavioral, ClusterID: s.ClusterID},
				PC:             s.PC,
			})
		}

		theta += rec.DurationSec()
	}

	return out
}

// RecordingSpans returns each recording's cumulative probe-clock-second
// span as an r1.Interval, for use by partition-completeness tests (spec
// 8): the union of these spans must equal the full recording group's
// duration, with no gap and no interior overlap beyond the shared
// boundary point.
func RecordingSpans(group spike.Group) []r1.Interval {
	out := make([]r1.Interval, len(group.Recordings))
	theta := 0.0
	for k, rec := range group.Recordings {
		hi := theta + rec.DurationSec()
		out[k] = r1.Interval{Lo: theta, Hi: hi}
		theta = hi
	}
	return out
}

// boundedWindow reports membership per spec 4.B's rule: lower exclusive
// and upper inclusive, except the very first recording's lower bound is
// inclusive too (DESIGN.md Open Question decision 1 — a spike at sample 0
// must never be dropped).
type boundedWindow struct {
	lo, hi       float64
	lowInclusive bool
}

func (w boundedWindow) contains(t float64) bool {
	if w.lowInclusive {
		return t >= w.lo && t <= w.hi
	}
	return t > w.lo && t <= w.hi
}

func windowsFor(group spike.Group) []boundedWindow {
	out := make([]boundedWindow, len(group.Recordings))
	theta := 0.0
	for k, rec := range group.Recordings {
		hi := theta + rec.DurationSec()
		out[k] = boundedWindow{lo: theta, hi: hi, lowInclusive: k == 0}
		theta = hi
	}
	return out
}
