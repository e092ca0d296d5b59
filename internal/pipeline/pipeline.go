package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/dctscramble-cli/internal/encoder"
	"github.com/AnyUserName/dctscramble-cli/internal/manifest"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
)

// DefaultFormat is used when Config.Format is empty.
const DefaultFormat = "png"

// Config holds all parameters for a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Params    scramble.Params // Params.Workers is the per-file block parallelism
	Profile   string          // recorded in the manifest only
	Format    string
	Quality   int
	Workers   int // files processed concurrently
	Metric    bool
	Verbose   bool
}

// Pipeline orchestrates batch processing of a directory tree.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	return &Pipeline{
		cfg:      cfg,
		registry: encoder.NewRegistry(),
	}
}

// Run processes every image under InputDir into OutputDir, mirroring the
// tree, and returns the manifest. The manifest is not written.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	if err := p.cfg.Params.Validate(); err != nil {
		return nil, err
	}
	enc, err := p.registry.Resolve(p.cfg.Format, p.cfg.Params.Mode == scramble.ModeScramble)
	if err != nil {
		return nil, err
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[dctscramble] %s\n", p.registry.String())
	}

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir, p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[dctscramble] found %d images\n", len(sources))
	}

	// Step 2: Assign output paths. Two sources differing only by
	// extension would overwrite each other; the later one fails.
	outputs := make([]string, len(sources))
	taken := make(map[string]string, len(sources))
	results := make([]processResult, len(sources))
	for i, s := range sources {
		out := s.Key + "." + enc.Extension()
		if prev, ok := taken[out]; ok {
			results[i] = processResult{
				key: s.RelPath,
				err: fmt.Errorf("%s: output %s already produced by %s", s.RelPath, out, prev),
			}
			continue
		}
		taken[out] = s.RelPath
		outputs[i] = out
	}

	// Step 3: Process files in parallel, each with its own generator.
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		if results[i].err != nil {
			continue
		}
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[dctscramble] processing: %s\n", s.RelPath)
			}

			results[idx] = processSource(s, outputs[idx], p.cfg, enc)

			if p.cfg.Verbose && results[idx].err == nil {
				f := results[idx].file
				fmt.Fprintf(os.Stderr, "[dctscramble] done: %s -> %s (%d blocks, %d clamped)\n",
					s.RelPath, f.Output.Path, f.Blocks, f.Clamped)
			}
		}(i, src)
	}
	wg.Wait()

	// Step 4: Collect results into manifest.
	m := manifest.New(p.cfg.Params.Mode.String(), p.cfg.Profile, p.cfg.Params.P, p.cfg.Params.N, enc.Format())

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Files[r.key] = r.file
	}

	// Report errors but don't fail the entire run for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[dctscramble] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[dctscramble] warning: %d of %d images had errors\n",
			len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers:      p.cfg.Workers,
		BlockWorkers: blockWorkers(p.cfg.Params.Workers),
	}
	m.Stats.Failed = len(errs)
	m.ComputeStats()
	return m, nil
}

func blockWorkers(n int) int {
	if n < 0 {
		return runtime.NumCPU()
	}
	return max(n, 1)
}
