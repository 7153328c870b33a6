package trialstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PesaranB/mind-snag/internal/raster"
	"github.com/PesaranB/mind-snag/internal/trialstore"
)

func TestReadCSV_ParsesEventsAndTreatsEmptyAsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trials.csv")
	content := "recording_id,trial_index,task_type,TargsOn,SaccStart\n" +
		"rec1,0,CO,1000,1250\n" +
		"rec1,1,CO,1500,NaN\n" +
		"rec1,2,CO,,1800\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	trials, err := trialstore.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, trials, 3)

	assert.Equal(t, raster.Present(1000), trials[0].Events["TargsOn"])
	assert.Equal(t, raster.Present(1250), trials[0].Events["SaccStart"])

	_, ok := trials[1].Events["SaccStart"]
	assert.False(t, ok)

	_, ok = trials[2].Events["TargsOn"]
	assert.False(t, ok)
}

func TestReadCSV_MissingFileReturnsMissingArtifactError(t *testing.T) {
	_, err := trialstore.ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestFilterByRecording(t *testing.T) {
	trials := []raster.Trial{
		{RecordingID: "a", TrialIndex: 0},
		{RecordingID: "b", TrialIndex: 0},
		{RecordingID: "a", TrialIndex: 1},
	}
	out := trialstore.FilterByRecording(trials, "a")
	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].TrialIndex)
	assert.Equal(t, 1, out[1].TrialIndex)
}
