// Package trialstore adapts the behavioral trial store (spec 6) into the
// raster builder's Trial type. The trial store itself (its schema,
// database, whatever a given lab uses) is explicitly out of core scope
// (spec 1); this package is the thin boundary adapter the core consumes.
package trialstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/PesaranB/mind-snag/internal/pipelineerr"
	"github.com/PesaranB/mind-snag/internal/raster"
)

// ReadCSV reads one recording's trial file: a header row
// (recording_id,trial_index,task_type,<event columns...>) followed by one
// row per trial, events in behavioral-clock ms, "NaN" or empty meaning
// missing (spec 6: "NaN = missing").
//
// A missing file is not an error at this layer in the sense of aborting
// the pipeline (spec 4.E failure: "A missing Trials.mat for a recording
// yields an empty raster record for every cluster"); callers should treat
// a returned ErrMissingArtifact as "use an empty trial list", not as
// fatal.
func ReadCSV(path string) ([]raster.Trial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pipelineerr.ErrMissingArtifact, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trial store header %q: %w", path, err)
	}

	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[h] = i
	}

	eventCols := make([]string, 0, len(header))
	for _, h := range header {
		if h != "recording_id" && h != "trial_index" && h != "task_type" {
			eventCols = append(eventCols, h)
		}
	}

	var trials []raster.Trial
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading trial row in %q: %w", path, err)
		}

		t := raster.Trial{Events: make(map[string]raster.EventTime, len(eventCols))}

		if i, ok := colIndex["recording_id"]; ok && i < len(row) {
			t.RecordingID = row[i]
		}
		if i, ok := colIndex["trial_index"]; ok && i < len(row) {
			if v, err := strconv.Atoi(row[i]); err == nil {
				t.TrialIndex = v
			}
		}
		if i, ok := colIndex["task_type"]; ok && i < len(row) {
			t.TaskType = raster.Tag(row[i])
		}

		for _, col := range eventCols {
			i := colIndex[col]
			if i >= len(row) {
				continue
			}
			val := row[i]
			if val == "" {
				continue
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || math.IsNaN(f) {
				continue
			}
			t.Events[col] = raster.Present(f)
		}

		trials = append(trials, t)
	}

	return trials, nil
}

// FilterByRecording restricts a full trial list to one recording
// (spec 4.E input: "the trial store filtered to this recording").
func FilterByRecording(trials []raster.Trial, recordingID string) []raster.Trial {
	var out []raster.Trial
	for _, t := range trials {
		if t.RecordingID == recordingID {
			out = append(out, t)
		}
	}
	return out
}
