package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PesaranB/mind-snag/internal/config"
)

func TestDefault_MatchesSpecDefaults(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 100.0, cfg.Isolation.WindowSec)
	assert.Equal(t, 1.0, cfg.Channel.Alpha)
	assert.Equal(t, 0.1, cfg.Channel.CoverageFloor)
	assert.Equal(t, [2]float64{-300, 500}, cfg.Raster.TimeWindow)
}

func TestLoad_OverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stitching:\n  fr_corr_threshold: 0.9\n  min_recordings: 2\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Stitching.FRCorrThreshold)
	assert.Equal(t, 2, cfg.Stitching.MinRecordings)
	// Unset keys keep Default()'s values.
	assert.Equal(t, 100.0, cfg.Isolation.WindowSec)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
