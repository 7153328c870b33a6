// Package geometry holds the probe channel map: the global channel
// ordering and each channel's electrode index, used by the stitcher to
// build electrode neighborhoods (spec 4.F step 2).
package geometry

import "sort"

// Probe is the per-session channel map: ElectrodeIndex[i] gives the electrode
// index of global channel i, in the same 0-indexed convention as the
// sorter's own channel_map array (spec 6).
type Probe struct {
	ElectrodeIndex []int32 // ElectrodeIndex[globalChannel] = electrode position
}

// NewProbe builds a Probe from a 0-indexed channel map, electrode indices
// assumed to already form the total order spec 8's "neighborhood symmetry"
// property requires.
func NewProbe(electrodeIndex []int32) Probe {
	return Probe{ElectrodeIndex: append([]int32(nil), electrodeIndex...)}
}

// NumChannels returns the number of global channels on the probe.
func (p Probe) NumChannels() int {
	return len(p.ElectrodeIndex)
}

// Electrode returns the electrode index of global channel c, or -1 if out
// of range.
func (p Probe) Electrode(c int32) int32 {
	if int(c) < 0 || int(c) >= len(p.ElectrodeIndex) {
		return -1
	}
	return p.ElectrodeIndex[c]
}

// Neighborhood returns every global channel whose electrode index is
// within radius rho of channel c's electrode index, inclusive, per spec
// 4.F: "all channels whose probe electrode index is within ±ρ of c's
// electrode index". The electrode-index total order guarantees
// neighborhood symmetry: if c' is in c's neighborhood, c is in c''s.
func (p Probe) Neighborhood(c int32, rho int32) []int32 {
	center := p.Electrode(c)
	if center < 0 {
		return nil
	}

	var out []int32
	for ch, e := range p.ElectrodeIndex {
		if abs32(e-center) <= rho {
			out = append(out, int32(ch))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
