package raster_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PesaranB/mind-snag/internal/raster"
)

// S4 — raster windowing example: one CO trial, spikes inside and outside
// the [-300,500]ms window around TargsOn, RT = SaccStart - TargsOn.
func TestBuildClusterRaster_S4_COWindowing(t *testing.T) {
	trials := []raster.Trial{
		{
			RecordingID: "r1",
			TrialIndex:  0,
			TaskType:    raster.TagCO,
			Events: map[string]raster.EventTime{
				"TargsOn":   raster.Present(1000),
				"SaccStart": raster.Present(1250),
			},
		},
	}

	// Spikes in seconds: 0.600 (-400ms, outside), 0.750 (-250ms, inside),
	// 1.100 (+100ms, inside), 1.600 (+600ms, outside).
	spikesSec := []float64{0.600, 0.750, 1.100, 1.600}

	cr := raster.BuildClusterRaster(raster.ClusterSpikes{ClusterID: 1, TimesSec: spikesSec}, trials, nil)

	var co raster.TaskRaster
	for _, task := range cr.Tasks {
		if task.Tag == raster.TagCO {
			co = task
		}
	}

	require.Len(t, co.Trials, 1)
	assert.ElementsMatch(t, []float64{-250, 100}, co.Trials[0].SpikeTimesMs)
	assert.InDelta(t, 250, co.Trials[0].RTMs, 1e-9)
}

func TestBuildClusterRaster_COFallsBackWhenPrimaryMissing(t *testing.T) {
	trials := []raster.Trial{
		{
			TaskType: raster.TagCO,
			Events: map[string]raster.EventTime{
				"disTargsOn": raster.Present(500),
				"SaccStart":  raster.Present(700),
			},
		},
	}

	cr := raster.BuildClusterRaster(raster.ClusterSpikes{ClusterID: 1, TimesSec: []float64{0.55}}, trials, nil)

	var co raster.TaskRaster
	for _, task := range cr.Tasks {
		if task.Tag == raster.TagCO {
			co = task
		}
	}
	require.Len(t, co.Trials, 1)
	assert.Equal(t, []float64{50}, co.Trials[0].SpikeTimesMs)
	assert.InDelta(t, 200, co.Trials[0].RTMs, 1e-9)
}

func TestBuildClusterRaster_NullTaskHasNaNRT(t *testing.T) {
	trials := []raster.Trial{
		{TaskType: raster.TagNull, Events: map[string]raster.EventTime{"Pulse_start": raster.Present(100)}},
	}

	cr := raster.BuildClusterRaster(raster.ClusterSpikes{ClusterID: 1, TimesSec: nil}, trials, nil)

	for _, task := range cr.Tasks {
		if task.Tag == raster.TagNull {
			require.Len(t, task.Trials, 1)
			assert.True(t, math.IsNaN(task.Trials[0].RTMs))
		}
	}
}

func TestBuildClusterRaster_NeighborUsesAsymmetricCOEvent(t *testing.T) {
	trials := []raster.Trial{
		{
			TaskType: raster.TagCO,
			Events: map[string]raster.EventTime{
				"TargsOn":    raster.Present(1000),
				"disTargsOn": raster.Present(900),
				"SaccStart":  raster.Present(1300),
			},
		},
	}

	neighborSpikes := []float64{0.950} // +50ms relative to disTargsOn, -50ms relative to TargsOn

	cr := raster.BuildClusterRaster(
		raster.ClusterSpikes{ClusterID: 1, TimesSec: nil},
		trials,
		[]raster.ClusterSpikes{{ClusterID: 2, TimesSec: neighborSpikes}},
	)

	require.Len(t, cr.Neighbors, 1)
	var co raster.TaskRaster
	for _, task := range cr.Neighbors[0].Tasks {
		if task.Tag == raster.TagCO {
			co = task
		}
	}
	require.Len(t, co.Trials, 1)
	assert.Equal(t, []float64{50}, co.Trials[0].SpikeTimesMs)
}

func TestBuildClusterRaster_TouchFallsBackToStartOnEndWhenRTUndefined(t *testing.T) {
	trials := []raster.Trial{
		{
			TaskType: raster.TagTouch,
			Events: map[string]raster.EventTime{
				"disTargsOn": raster.Present(0),
				"StartOn":    raster.Present(100),
				"End":        raster.Present(400),
			},
		},
	}

	cr := raster.BuildClusterRaster(raster.ClusterSpikes{ClusterID: 1, TimesSec: []float64{0.15}}, trials, nil)

	var touch raster.TaskRaster
	for _, task := range cr.Tasks {
		if task.Tag == raster.TagTouch {
			touch = task
		}
	}
	require.Len(t, touch.Trials, 1)
	assert.InDelta(t, -300, touch.Trials[0].RTMs, 1e-9)
}
