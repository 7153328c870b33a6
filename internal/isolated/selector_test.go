package isolated_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PesaranB/mind-snag/internal/isolated"
	"github.com/PesaranB/mind-snag/internal/spike"
)

func TestIsIsolated_ReadsFrameZeroVerdict(t *testing.T) {
	assert.False(t, isolated.IsIsolated(nil))
	assert.False(t, isolated.IsIsolated([]spike.IsolationFrame{{Verdict: spike.NotIsolated}}))
	assert.True(t, isolated.IsIsolated([]spike.IsolationFrame{{Verdict: spike.Isolated}, {Verdict: spike.NotIsolated}}))
}

func TestSelect_RestrictsEventsAndClusters(t *testing.T) {
	events := []spike.Event{
		{Time: 0.1, ClusterID: 1},
		{Time: 0.2, ClusterID: 2},
		{Time: 0.3, ClusterID: 1},
	}
	clusters := []spike.Cluster{
		{ID: 1, BestChannel: 0},
		{ID: 2, BestChannel: 1},
	}
	isolation := map[int64][]spike.IsolationFrame{
		1: {{Verdict: spike.Isolated}},
		2: {{Verdict: spike.NotIsolated}},
	}

	isoEvents, isoClusters := isolated.Select(events, clusters, isolation)

	assert.Len(t, isoEvents, 2)
	for _, e := range isoEvents {
		assert.Equal(t, int64(1), e.ClusterID)
	}
	assert.Equal(t, []spike.Cluster{{ID: 1, BestChannel: 0}}, isoClusters)
}

func TestSelect_MissingIsolationRecordTreatedAsNotIsolated(t *testing.T) {
	events := []spike.Event{{Time: 0.1, ClusterID: 5}}
	clusters := []spike.Cluster{{ID: 5}}

	isoEvents, isoClusters := isolated.Select(events, clusters, nil)
	assert.Empty(t, isoEvents)
	assert.Empty(t, isoClusters)
}
