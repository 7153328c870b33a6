package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PesaranB/mind-snag/internal/container"
	"github.com/PesaranB/mind-snag/internal/spike"
)

func TestSpikeStream_WriteInitialThenAppendIsolated(t *testing.T) {
	var s container.SpikeStream

	events := []spike.Event{{Time: 0.1, ClusterID: 1}, {Time: 0.2, ClusterID: 2}}
	clusters := []spike.Cluster{
		{ID: 1, Quality: spike.QualityGood},
		{ID: 2, Quality: spike.QualityMUA},
	}
	s.WriteInitial(events, clusters)

	assert.Equal(t, []float64{0.1, 0.2}, s.SpikeTimes)
	require.Len(t, s.GoodOnly, 1)
	assert.Equal(t, int64(1), s.GoodOnly[0].ID)

	s.AppendIsolated([]spike.Event{{Time: 0.1, ClusterID: 1}}, []spike.Cluster{{ID: 1, Quality: spike.QualityGood}})
	assert.Equal(t, []float64{0.1}, s.IsoSpikeTimes)
	assert.Equal(t, []int64{1}, s.IsoClusterIDs)
}

func TestWriter_WriteAndReadGobRoundTrip(t *testing.T) {
	w := container.Writer{SessionDir: t.TempDir()}

	var s container.SpikeStream
	s.WriteInitial([]spike.Event{{Time: 1.5, ClusterID: 9}}, []spike.Cluster{{ID: 9}})

	require.NoError(t, w.WriteGob("spike_stream", &s))

	var loaded container.SpikeStream
	require.NoError(t, w.ReadGob("spike_stream", &loaded))
	assert.Equal(t, []float64{1.5}, loaded.SpikeTimes)
	assert.Equal(t, []int64{9}, loaded.ClusterIDs)
}

func TestWriter_ReadGobMissingArtifact(t *testing.T) {
	w := container.Writer{SessionDir: t.TempDir()}
	var loaded container.SpikeStream
	assert.Error(t, w.ReadGob("missing", &loaded))
}
