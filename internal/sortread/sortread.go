// Package sortread adapts the upstream spike-sorting engine's raw output
// (spec 6: "Upstream sorter output") into this pipeline's data model.
// This is explicitly at the edge of CORE scope (spec 1): the sorter
// itself, and the exact on-disk array layout it writes, are external.
package sortread

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/PesaranB/mind-snag/internal/pipelineerr"
	"github.com/PesaranB/mind-snag/internal/spike"
	"github.com/PesaranB/mind-snag/internal/timebase"
)

// RecordingArtifacts is one recording directory's raw sorter output,
// spec 6 fields (i)-(viii), plus (ix) the quality label file.
type RecordingArtifacts struct {
	SpikeTimesSamples []int64
	ClusterAssign     []int32
	TemplateID        []int32
	Templates         [][][]float32 // [nTemplates][nSamples][nChannels]
	PCFeatures        [][3][]float32
	ScalingAmps       []float32
	LocalChanIdx      [][]int32 // [nTemplates][nLocalChannels]
	ChannelMap        []int32
	Quality           map[int64]spike.QualityLabel
}

// ReadQualityFile parses spec 6(ix)'s tab-separated cluster_id/label file.
func ReadQualityFile(path string) (map[int64]spike.QualityLabel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pipelineerr.ErrMissingArtifact, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	out := make(map[int64]spike.QualityLabel)
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading quality file %q: %w", path, err)
		}
		if first {
			first = false
			if len(row) >= 2 && (row[0] == "cluster_id" || row[0] == "cluster_id\r") {
				continue
			}
		}
		if len(row) < 2 {
			continue
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		out[id] = spike.ParseQualityLabel(row[1])
	}
	return out, nil
}

// ReadInt64Array reads a flat little-endian int64 array (spec 6(i), spike
// times in probe samples).
func ReadInt64Array(path string) ([]int64, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 8
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}

// ReadInt32Array reads a flat little-endian int32 array (spec 6(ii),(iii),
// (vii) partially, (viii)).
func ReadInt32Array(path string) ([]int32, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 4
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// ReadFloat32Array reads a flat little-endian float32 array (spec
// 6(iv)-(vi), flattened; callers reshape per their known dimensions).
func ReadFloat32Array(path string) ([]float32, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// ReadFloat64Array reads a flat little-endian float64 array (spec 6
// timing metadata: sample_rate, affine weights).
func ReadFloat64Array(path string) ([]float64, error) {
	raw, err := readAll(path)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 8
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint64(raw[i*8:])
		out[i] = math.Float64frombits(bits)
	}
	return out, nil
}

func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", pipelineerr.ErrMissingArtifact, path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	return io.ReadAll(r)
}

// BuildRawSpikes assembles per-spike PC records (spec 6(v),(vi)) into the
// timebase reprojector's input shape. pcFlat must already be shaped as
// one [3][nLocalChannels] record per spike; all four slices must have the
// same length.
func BuildRawSpikes(times []int64, clusterAssign []int32, pcFlat [][3][]float32, scalingAmps []float32) ([]timebase.RawSpike, error) {
	n := len(times)
	if len(clusterAssign) != n || len(pcFlat) != n || len(scalingAmps) != n {
		return nil, fmt.Errorf("%w: mismatched spike array lengths", pipelineerr.ErrSchemaDrift)
	}

	out := make([]timebase.RawSpike, n)
	for i := 0; i < n; i++ {
		out[i] = timebase.RawSpike{
			TimeSample: times[i],
			ClusterID:  int64(clusterAssign[i]),
			PC: spike.PCRecord{
				Components: pcFlat[i],
				ScalingAmp: scalingAmps[i],
			},
		}
	}
	return out, nil
}
