package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/dctscramble-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, manifest.FileName)
	}

	m, err := manifest.ReadJSON(path)
	if err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), m)
	return nil
}

func printStats(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Manifest version: %d\n", m.Version)
	fmt.Fprintf(w, "  Generated:        %s\n", m.GeneratedAt)
	fmt.Fprintf(w, "  Mode:             %s\n", m.Mode)
	fmt.Fprintf(w, "  Profile:          %s (p=%g, n=%d)\n", m.Profile, m.P, m.N)
	fmt.Fprintf(w, "  Output format:    %s\n", m.Format)
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:          %d files x %d blocks\n", m.BuildInfo.Workers, m.BuildInfo.BlockWorkers)
	}
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Total files:      %d\n", s.TotalFiles)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed:           %d\n", s.Failed)
	}
	fmt.Fprintf(w, "  Total blocks:     %d\n", s.TotalBlocks)
	fmt.Fprintf(w, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Fprintf(w, "  Size ratio:       %.1f%% of input\n", ratio)
	}
	if s.MeanPSNR > 0 {
		fmt.Fprintf(w, "  Mean PSNR:        %.2f dB\n", s.MeanPSNR)
	}
	fmt.Fprintln(w)

	// Per-source-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, f := range m.Files {
		fs := formatStats[f.Source.Format]
		fs.count++
		fs.bytes += f.Source.Size
		formatStats[f.Source.Format] = fs
	}
	var formats []string
	for f := range formatStats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	fmt.Fprintln(w, "  Source formats:")
	for _, f := range formats {
		fs := formatStats[f]
		fmt.Fprintf(w, "    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
	}
	fmt.Fprintln(w)

	// Per-shape breakdown.
	shapeStats := map[string]int{}
	for _, f := range m.Files {
		shapeStats[fmt.Sprintf("%dch@%d", f.Source.Channels, f.Source.Depth)]++
	}
	var shapes []string
	for sh := range shapeStats {
		shapes = append(shapes, sh)
	}
	sort.Strings(shapes)
	fmt.Fprintln(w, "  Channel layouts:")
	for _, sh := range shapes {
		fmt.Fprintf(w, "    %-8s  %4d files\n", sh, shapeStats[sh])
	}
	fmt.Fprintln(w)

	// Warnings.
	var warnings []string
	for key, f := range m.Files {
		if f.Clamped > 0 {
			warnings = append(warnings, fmt.Sprintf("file %q: %d samples clamped", key, f.Clamped))
		}
		if f.Source.Width%8 != 0 || f.Source.Height%8 != 0 {
			warnings = append(warnings, fmt.Sprintf("file %q: %dx%d has an unscrambled edge strip",
				key, f.Source.Width, f.Source.Height))
		}
	}
	sort.Strings(warnings)
	if len(warnings) > 0 {
		fmt.Fprintf(w, "  Warnings (%d):\n", len(warnings))
		for _, warn := range warnings {
			fmt.Fprintf(w, "    ⚠ %s\n", warn)
		}
	}
	fmt.Fprintln(w)
}
