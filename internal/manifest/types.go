package manifest

// Manifest is the top-level record of a batch run. It never stores the key.
type Manifest struct {
	Version     int             `json:"version"`
	GeneratedAt string          `json:"generated_at"`
	Mode        string          `json:"mode"` // "scramble" or "descramble"
	Profile     string          `json:"profile"`
	P           float64         `json:"p"`
	N           int             `json:"n"`
	Format      string          `json:"format"`
	BasePath    string          `json:"base_path"`
	BuildInfo   *BuildInfo      `json:"build_info,omitempty"`
	Files       map[string]File `json:"files"`
	Stats       Stats           `json:"stats"`
}

// BuildInfo captures run-time parameters for diagnostics.
type BuildInfo struct {
	Workers      int `json:"workers"`       // files processed concurrently
	BlockWorkers int `json:"block_workers"` // per-file block parallelism
}

// File describes one processed source and its output.
type File struct {
	Source  SourceInfo  `json:"source"`
	Output  OutputInfo  `json:"output"`
	Blocks  int         `json:"blocks"`
	Masks   int         `json:"masks"`
	Clamped int         `json:"clamped"` // samples clamped on requantization
	Metric  *MetricInfo `json:"metric,omitempty"`
}

// SourceInfo holds metadata about the input file.
type SourceInfo struct {
	Path     string `json:"path"` // relative to the input dir
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Depth    int    `json:"depth"`
}

// OutputInfo is the written file.
type OutputInfo struct {
	Path   string `json:"path"`   // relative to base_path
	Format string `json:"format"` // "png", "tiff", "bmp", "webp", "avif", "dcsg", "jpeg"
	Size   int64  `json:"size"`   // bytes on disk
	Hash   string `json:"hash"`   // first 16 hex chars of xxhash64
}

// MetricInfo compares output against input. PSNR is omitted when the two
// are identical (infinite PSNR has no JSON encoding).
type MetricInfo struct {
	MSE       float64  `json:"mse"`
	PSNR      *float64 `json:"psnr,omitempty"`
	Identical bool     `json:"identical,omitempty"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalFiles       int     `json:"total_files"`
	TotalBlocks      int     `json:"total_blocks"`
	TotalClamped     int     `json:"total_clamped"`
	TotalInputBytes  int64   `json:"total_input_bytes"`
	TotalOutputBytes int64   `json:"total_output_bytes"`
	MeanPSNR         float64 `json:"mean_psnr,omitempty"` // over files with a finite PSNR
	Failed           int     `json:"failed,omitempty"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
