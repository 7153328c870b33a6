// Package container persists the pipeline's output artifacts (spec 6:
// "Persisted state"). On-disk container format choice is explicitly out
// of core scope (spec 1); this package defines the writer interface the
// core needs and a default gob-based implementation, which round-trips
// Go structs (including the float64 NaN sentinels used throughout)
// without needing a schema layer.
package container

import (
	"encoding/gob"
	"fmt"
	"os"
	"sync"

	"github.com/PesaranB/mind-snag/internal/spike"
)

// SpikeStream is the per-recording container spec 6 describes: the
// initial write from the timebase reprojector (B), mutated once more by
// the isolated-unit selector (D) to append the iso_* fields. The two
// writers are serialized by Mutex per spec 5's "these writes are
// exclusive and must not overlap".
type SpikeStream struct {
	mu sync.Mutex

	SpikeTimes    []float64
	ClusterIDs    []int64
	ClusterTable  []spike.Cluster // clu_info
	GoodOnly      []spike.Cluster // ks_clu_info, filtered to quality=good

	IsoSpikeTimes   []float64
	IsoClusterIDs   []int64
	IsoClusterTable []spike.Cluster
}

// WriteInitial performs B's write (spec 6's spike_times/cluster_ids/
// clu_info/ks_clu_info fields).
func (s *SpikeStream) WriteInitial(events []spike.Event, clusters []spike.Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SpikeTimes = make([]float64, len(events))
	s.ClusterIDs = make([]int64, len(events))
	for i, e := range events {
		s.SpikeTimes[i] = e.Time
		s.ClusterIDs[i] = e.ClusterID
	}

	s.ClusterTable = clusters
	for _, c := range clusters {
		if c.Quality == spike.QualityGood {
			s.GoodOnly = append(s.GoodOnly, c)
		}
	}
}

// AppendIsolated performs D's append of the iso_* fields.
func (s *SpikeStream) AppendIsolated(events []spike.Event, clusters []spike.Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.IsoSpikeTimes = make([]float64, len(events))
	s.IsoClusterIDs = make([]int64, len(events))
	for i, e := range events {
		s.IsoSpikeTimes[i] = e.Time
		s.IsoClusterIDs[i] = e.ClusterID
	}
	s.IsoClusterTable = clusters
}

// Writer persists one named artifact under a session directory.
type Writer struct {
	SessionDir string
}

// WriteGob encodes v to <SessionDir>/<name>.gob.
func (w Writer) WriteGob(name string, v any) error {
	f, err := os.Create(fmt.Sprintf("%s/%s.gob", w.SessionDir, name))
	if err != nil {
		return fmt.Errorf("creating artifact %q: %w", name, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encoding artifact %q: %w", name, err)
	}
	return nil
}

// ReadGob decodes <SessionDir>/<name>.gob into v.
func (w Writer) ReadGob(name string, v any) error {
	f, err := os.Open(fmt.Sprintf("%s/%s.gob", w.SessionDir, name))
	if err != nil {
		return fmt.Errorf("opening artifact %q: %w", name, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding artifact %q: %w", name, err)
	}
	return nil
}
