package pipeline_test

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PesaranB/mind-snag/internal/channel"
	"github.com/PesaranB/mind-snag/internal/config"
	"github.com/PesaranB/mind-snag/internal/geometry"
	"github.com/PesaranB/mind-snag/internal/pipeline"
	"github.com/PesaranB/mind-snag/internal/raster"
	"github.com/PesaranB/mind-snag/internal/spike"
	"github.com/PesaranB/mind-snag/internal/stitch"
	"github.com/PesaranB/mind-snag/internal/timebase"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRunRecording_SingleClusterEndToEnd(t *testing.T) {
	group := spike.Group{Recordings: []spike.Recording{
		{
			ID:              "rec1",
			DurationSamples: 3_000_000,
			SampleRate:      30_000,
			ProbeToAux:      spike.Affine{Intercept: 0, Slope: 1},
			AuxToBehavioral: &spike.Affine{Intercept: 0, Slope: 1},
		},
	}}

	var raw []timebase.RawSpike
	for i := int64(0); i < 20; i++ {
		raw = append(raw, timebase.RawSpike{
			TimeSample: i * 30_000,
			ClusterID:  1,
			PC: spike.PCRecord{
				Components: [3][]float32{{10, 0}, {0, 0}, {0, 0}},
				ScalingAmp: 1,
			},
		})
	}

	in := pipeline.RecordingInput{
		Recording: group.Recordings[0],
		RawSpikes: raw,
		Clusters: []channel.ClusterInput{{
			ClusterID: 1,
			Template:  spike.Template{Samples: [][]float32{{5, 1}, {6, 1}}},
			PCFeatures: []spike.PCRecord{
				{Components: [3][]float32{{1, 1}, {0, 0}, {0, 0}}, ScalingAmp: 1},
			},
			LocalTable: spike.LocalChannelTable{0, 1},
		}},
		Quality: map[int64]spike.QualityLabel{1: spike.QualityGood},
		Trials: []raster.Trial{
			{TaskType: raster.TagCO, Events: map[string]raster.EventTime{
				"TargsOn":   raster.Present(0),
				"SaccStart": raster.Present(200),
			}},
		},
	}

	res, err := pipeline.RunRecording(context.Background(), testLogger(), config.Default(), group, 0, in)
	require.NoError(t, err)

	require.Len(t, res.ClusterTable, 1)
	assert.Equal(t, int64(1), res.ClusterTable[0].ID)
	assert.Equal(t, int32(0), res.ClusterTable[0].BestChannel)

	assert.Len(t, res.Events, 20)
	require.Contains(t, res.Isolation, int64(1))
	require.Contains(t, res.Rasters, int64(1))
	assert.NotEmpty(t, res.Waveforms[1])
}

func TestRunStitch_TwoRecordingsScopeAll(t *testing.T) {
	rec0 := pipeline.RecordingResult{
		RecordingID:  "r0",
		ClusterTable: []spike.Cluster{{ID: 1, BestChannel: 0, Quality: spike.QualityGood}},
		Rasters: map[int64]raster.ClusterRaster{
			1: {ClusterID: 1, Tasks: []raster.TaskRaster{{Tag: raster.TagCO, Trials: []raster.TrialSlice{{SpikeTimesMs: []float64{10, 20}, RTMs: 100}}}}},
		},
		Waveforms: map[int64][]float64{1: {1, 2, 3, 2, 1}},
	}
	rec1 := pipeline.RecordingResult{
		RecordingID:  "r1",
		ClusterTable: []spike.Cluster{{ID: 2, BestChannel: 0, Quality: spike.QualityGood}},
		Rasters: map[int64]raster.ClusterRaster{
			2: {ClusterID: 2, Tasks: []raster.TaskRaster{{Tag: raster.TagCO, Trials: []raster.TrialSlice{{SpikeTimesMs: []float64{10, 20}, RTMs: 100}}}}},
		},
		Waveforms: map[int64][]float64{2: {1, 2, 3, 2, 1}},
	}

	in := pipeline.SessionInput{
		Recordings: []pipeline.RecordingResult{rec0, rec1},
		Probe:      geometry.NewProbe([]int32{0, 1, 2}),
		Scope:      stitch.ScopeAll,
		Thresholds: stitch.Thresholds{FRCorr: 0.5, WFCorr: 0.5, MinRecordings: 2, ChannelRange: 0},
	}

	rows, err := pipeline.RunStitch(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, spike.StitchRow{1, 2}, rows[0])
}

func TestContractViolation_WrapsSentinel(t *testing.T) {
	err := pipeline.ContractViolation("rec1", 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rec1")
}
