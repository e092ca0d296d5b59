package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/dctscramble-cli/internal/encoder"
	"github.com/AnyUserName/dctscramble-cli/internal/hasher"
	"github.com/AnyUserName/dctscramble-cli/internal/manifest"
	"github.com/AnyUserName/dctscramble-cli/internal/metric"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
)

// Job describes one file to scramble or descramble.
type Job struct {
	InPath  string
	OutPath string
	Params  scramble.Params
	Encoder encoder.Encoder
	Quality int  // lossy encoders only
	Metric  bool // compare output samples against input samples
}

// ProcessOne decodes InPath, runs the block pipeline, encodes with the
// job's encoder and writes OutPath, creating parent directories. The
// returned record carries the paths as given; batch runs rewrite them
// relative to their roots.
func ProcessOne(job Job) (manifest.File, error) {
	var rec manifest.File

	data, err := os.ReadFile(job.InPath)
	if err != nil {
		return rec, fmt.Errorf("read %s: %w", job.InPath, err)
	}
	format := encoder.FormatFromPath(job.InPath)

	src, err := encoder.DecodeBytes(data, format)
	if err != nil {
		return rec, fmt.Errorf("decode %s: %w", job.InPath, err)
	}
	rec.Source = manifest.SourceInfo{
		Path:     job.InPath,
		Format:   format,
		Size:     int64(len(data)),
		Width:    src.Width,
		Height:   src.Height,
		Channels: src.Channels,
		Depth:    src.Depth,
	}

	out, st, err := scramble.ProcessWithStats(src, job.Params)
	if err != nil {
		return rec, fmt.Errorf("%s %s: %w", job.Params.Mode, job.InPath, err)
	}
	rec.Blocks = st.Blocks
	rec.Masks = st.Masks
	rec.Clamped = st.Clamped

	encoded, err := job.Encoder.Encode(out, job.Quality)
	if err != nil {
		return rec, fmt.Errorf("encode %s as %s: %w", job.InPath, job.Encoder.Format(), err)
	}
	// Scrambled samples only descramble if the file gives them back exactly.
	if job.Params.Mode == scramble.ModeScramble {
		if err := encoder.Verify(job.Encoder.Format(), encoded, out); err != nil {
			return rec, fmt.Errorf("encode %s as %s: %w", job.InPath, job.Encoder.Format(), err)
		}
	}

	if dir := filepath.Dir(job.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return rec, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(job.OutPath, encoded, 0o644); err != nil {
		return rec, fmt.Errorf("write %s: %w", job.OutPath, err)
	}
	rec.Output = manifest.OutputInfo{
		Path:   job.OutPath,
		Format: job.Encoder.Format(),
		Size:   int64(len(encoded)),
		Hash:   hasher.ContentHash(encoded, 16),
	}

	if job.Metric {
		r, err := metric.Compare(src, out)
		if err != nil {
			return rec, fmt.Errorf("compare %s: %w", job.InPath, err)
		}
		rec.Metric = manifest.NewMetric(r.MSE, r.PSNR)
	}
	return rec, nil
}

// processResult holds the result of processing a single source image.
type processResult struct {
	key  string
	file manifest.File
	err  error
}

// processSource maps a scanned source onto the output tree and runs it.
func processSource(src Source, outRel string, cfg Config, enc encoder.Encoder) processResult {
	result := processResult{key: src.RelPath}

	file, err := ProcessOne(Job{
		InPath:  src.AbsPath,
		OutPath: filepath.Join(cfg.OutputDir, filepath.FromSlash(outRel)),
		Params:  cfg.Params,
		Encoder: enc,
		Quality: cfg.Quality,
		Metric:  cfg.Metric,
	})
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}
	file.Source.Path = src.RelPath
	file.Output.Path = outRel
	result.file = file
	return result
}
