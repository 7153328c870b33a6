// Package isolated implements the isolated-unit selector (spec 4.D):
// scans every per-cluster isolation record and derives the restricted
// spike stream and cluster table for clusters verdicted isolated.
package isolated

import "github.com/PesaranB/mind-snag/internal/spike"

// IsIsolated reports whether a cluster's isolation record marks it
// isolated, by spec 4.D convention: "the frame-0 verdict ... equals
// isolated". Curation (external, out of scope) may have updated that
// field after the scorer ran; this selector only reads it.
func IsIsolated(frames []spike.IsolationFrame) bool {
	if len(frames) == 0 {
		return false
	}
	return frames[0].Verdict == spike.Isolated
}

// Select derives the isolated-subset spike stream and cluster table from
// the full reprojected stream, the full cluster table, and the
// per-cluster isolation records.
func Select(events []spike.Event, clusters []spike.Cluster, isolation map[int64][]spike.IsolationFrame) (isoEvents []spike.Event, isoClusters []spike.Cluster) {
	isolatedIDs := make(map[int64]bool)
	for _, c := range clusters {
		if frames, ok := isolation[c.ID]; ok && IsIsolated(frames) {
			isolatedIDs[c.ID] = true
		}
	}

	for _, e := range events {
		if isolatedIDs[e.ClusterID] {
			isoEvents = append(isoEvents, e)
		}
	}
	for _, c := range clusters {
		if isolatedIDs[c.ID] {
			isoClusters = append(isoClusters, c)
		}
	}
	return isoEvents, isoClusters
}
