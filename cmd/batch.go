package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/dctscramble-cli/internal/manifest"
	"github.com/AnyUserName/dctscramble-cli/internal/pipeline"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
	"github.com/spf13/cobra"
)

var (
	batchOutDir  string
	batchMode    string
	batchWorkers int
	batchFlags   paramFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Scramble or descramble a directory tree and write a manifest",
	Long: `Scans the input directory for images (png, jpg, jpeg, gif, bmp, tiff, webp,
dcsg), processes each one with the same key and parameters, mirrors the tree
into the output directory and writes dctscramble.manifest.json.

Output files keep their relative path with the extension of the output
format. The manifest records parameters, content hashes and metrics, never
the key.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "./dctscramble_out", "output directory")
	batchCmd.Flags().StringVarP(&batchMode, "mode", "m", "", "scramble or descramble")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "files processed in parallel (0 = NumCPU)")
	batchFlags.register(batchCmd, "block-workers", "parallel block workers per file (0 = sequential)")
	_ = batchCmd.MarkFlagRequired("mode")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	mode, err := scramble.ParseMode(batchMode)
	if err != nil {
		return err
	}

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	params, prof, err := batchFlags.resolve(cmd, mode)
	if err != nil {
		return err
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (p=%g, n=%d, format=%s)", prof.Name, params.P, params.N, prof.Format)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Params:    params,
		Profile:   prof.Name,
		Format:    prof.Format,
		Quality:   batchFlags.quality,
		Workers:   batchWorkers,
		Metric:    true,
		Verbose:   verbose,
	})

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBatchReport(m, time.Since(start))
	return nil
}

func printBatchReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Printf("║ %-48s ║\n", fmt.Sprintf("dctscramble %s complete", m.Mode))
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	stats := m.Stats
	fmt.Printf("  Files:       %d\n", stats.TotalFiles)
	if stats.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", stats.Failed)
	}
	fmt.Printf("  Blocks:      %d\n", stats.TotalBlocks)
	fmt.Printf("  Parameters:  profile=%s p=%g n=%d format=%s\n", m.Profile, m.P, m.N, m.Format)
	fmt.Printf("  Input size:  %s\n", formatBytes(stats.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(stats.TotalOutputBytes))
	if stats.MeanPSNR > 0 {
		fmt.Printf("  Mean PSNR:   %.2f dB\n", stats.MeanPSNR)
	}
	if stats.TotalClamped > 0 {
		fmt.Printf("  Clamped:     %d samples (not exactly restorable)\n", stats.TotalClamped)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d files x %d blocks\n", m.BuildInfo.Workers, m.BuildInfo.BlockWorkers)
	}
	fmt.Println()

	// Files that clamped the most.
	if stats.TotalClamped > 0 {
		type clampInfo struct {
			key     string
			clamped int
			samples int
		}
		var items []clampInfo
		for key, f := range m.Files {
			if f.Clamped > 0 {
				items = append(items, clampInfo{key, f.Clamped,
					f.Source.Width * f.Source.Height * f.Source.Channels})
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].clamped != items[j].clamped {
				return items[i].clamped > items[j].clamped
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d clamped:\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8d  (%.2f%% of samples)\n",
				truncKey(it.key, 40), it.clamped, float64(it.clamped)/float64(max(it.samples, 1))*100)
		}
		fmt.Println()
	}

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
