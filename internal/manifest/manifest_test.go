package manifest

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManifestRoundtrip(t *testing.T) {
	m := New("scramble", "light", 0.1, 1, "png")
	m.BuildInfo = &BuildInfo{Workers: 4, BlockWorkers: 2}
	m.Files["photos/cat.jpg"] = File{
		Source: SourceInfo{
			Path: "photos/cat.jpg", Format: "jpeg", Size: 100000,
			Width: 800, Height: 600, Channels: 3, Depth: 8,
		},
		Output: OutputInfo{Path: "photos/cat.png", Format: "png", Size: 420000, Hash: "abcd1234abcd1234"},
		Blocks: 7500 * 3,
		Masks:  7500 * 3,
		Metric: NewMetric(412.5, 21.97),
	}
	m.Files["flat.png"] = File{
		Source: SourceInfo{Path: "flat.png", Format: "png", Size: 500, Width: 8, Height: 8, Channels: 1, Depth: 8},
		Output: OutputInfo{Path: "flat.png", Format: "png", Size: 300, Hash: "0011223344556677"},
		Blocks: 1, Masks: 1, Clamped: 3,
		Metric: NewMetric(0, math.Inf(1)),
	}

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "seed") {
		t.Error("manifest must not carry the key")
	}

	m2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Mode != "scramble" || m2.Profile != "light" || m2.P != 0.1 || m2.N != 1 {
		t.Errorf("parameters: got %s/%s/%v/%d", m2.Mode, m2.Profile, m2.P, m2.N)
	}
	if m2.BuildInfo == nil || m2.BuildInfo.Workers != 4 || m2.BuildInfo.BlockWorkers != 2 {
		t.Fatalf("build_info: got %+v", m2.BuildInfo)
	}

	f, ok := m2.Files["photos/cat.jpg"]
	if !ok {
		t.Fatal("file photos/cat.jpg missing")
	}
	if f.Output.Hash != "abcd1234abcd1234" {
		t.Errorf("hash: got %q", f.Output.Hash)
	}
	if f.Metric == nil || f.Metric.PSNR == nil || *f.Metric.PSNR != 21.97 {
		t.Errorf("metric: got %+v", f.Metric)
	}

	flat := m2.Files["flat.png"]
	if flat.Metric == nil || !flat.Metric.Identical || flat.Metric.PSNR != nil {
		t.Errorf("identical metric: got %+v", flat.Metric)
	}

	if m2.Stats.TotalFiles != 2 {
		t.Errorf("total_files: got %d", m2.Stats.TotalFiles)
	}
	if m2.Stats.TotalBlocks != 22501 {
		t.Errorf("total_blocks: got %d", m2.Stats.TotalBlocks)
	}
	if m2.Stats.TotalClamped != 3 {
		t.Errorf("total_clamped: got %d", m2.Stats.TotalClamped)
	}
	if m2.Stats.TotalInputBytes != 100500 || m2.Stats.TotalOutputBytes != 420300 {
		t.Errorf("bytes: got %d in, %d out", m2.Stats.TotalInputBytes, m2.Stats.TotalOutputBytes)
	}
	if m2.Stats.MeanPSNR != 21.97 {
		t.Errorf("mean_psnr: got %v", m2.Stats.MeanPSNR)
	}
}

func TestManifestVersion(t *testing.T) {
	m := New("descramble", "strong", 0.5, 0, "tiff")
	if m.Version != SupportedManifestVersion {
		t.Errorf("new manifest version: got %d, want %d", m.Version, SupportedManifestVersion)
	}
}

func TestComputeStatsKeepsFailed(t *testing.T) {
	m := New("scramble", "light", 0.1, 1, "png")
	m.Stats.Failed = 2
	m.ComputeStats()
	if m.Stats.Failed != 2 {
		t.Errorf("failed: got %d", m.Stats.Failed)
	}
	if m.Stats.MeanPSNR != 0 {
		t.Errorf("mean_psnr without metrics: got %v", m.Stats.MeanPSNR)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2025-01-01T00:00:00Z",
		"mode": "scramble",
		"profile": "balanced",
		"p": 0.5,
		"n": 1,
		"format": "png",
		"base_path": "./",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "block_workers": 1, "new_flag": true },
		"files": {},
		"stats": { "total_files": 0, "new_stat": 42 }
	}`

	var m Manifest
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if m.Version != 1 || m.P != 0.5 {
		t.Errorf("header: got version %d p %v", m.Version, m.P)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}
