package manifest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// FileName is the manifest written at the root of a batch output directory.
const FileName = "dctscramble.manifest.json"

// New creates an empty manifest with defaults.
func New(mode, profileName string, p float64, n int, format string) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Mode:        mode,
		Profile:     profileName,
		P:           p,
		N:           n,
		Format:      format,
		BasePath:    "./",
		Files:       make(map[string]File),
	}
}

// NewMetric converts an MSE/PSNR pair into its manifest form.
func NewMetric(mse, psnr float64) *MetricInfo {
	m := &MetricInfo{MSE: mse}
	if math.IsInf(psnr, 1) {
		m.Identical = true
		return m
	}
	m.PSNR = &psnr
	return m
}

// ComputeStats recalculates aggregate statistics from files. Failed is
// owned by the caller and preserved.
func (m *Manifest) ComputeStats() {
	s := Stats{Failed: m.Stats.Failed}
	s.TotalFiles = len(m.Files)
	var psnrSum float64
	var psnrCount int
	for _, f := range m.Files {
		s.TotalInputBytes += f.Source.Size
		s.TotalOutputBytes += f.Output.Size
		s.TotalBlocks += f.Blocks
		s.TotalClamped += f.Clamped
		if f.Metric != nil && f.Metric.PSNR != nil {
			psnrSum += *f.Metric.PSNR
			psnrCount++
		}
	}
	if psnrCount > 0 {
		s.MeanPSNR = psnrSum / float64(psnrCount)
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest written by WriteJSON.
func ReadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
