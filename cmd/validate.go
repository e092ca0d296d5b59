package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/dctscramble-cli/internal/block"
	"github.com/AnyUserName/dctscramble-cli/internal/hasher"
	"github.com/AnyUserName/dctscramble-cli/internal/manifest"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a manifest and check referenced files are unchanged",
	Long: `Checks the manifest fields and that every output file exists with the
recorded size and content hash. A scrambled file that fails the hash check
will not descramble correctly.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]
	if info, err := os.Stat(manifestPath); err == nil && info.IsDir() {
		manifestPath = filepath.Join(manifestPath, manifest.FileName)
	}

	m, err := manifest.ReadJSON(manifestPath)
	if err != nil {
		return err
	}

	baseDir := filepath.Join(filepath.Dir(manifestPath), m.BasePath)
	errs := validateManifest(m, baseDir)

	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d files, all present and unchanged\n", m.Stats.TotalFiles)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if _, err := scramble.ParseMode(m.Mode); err != nil {
		errs = append(errs, fmt.Sprintf("invalid mode %q", m.Mode))
	}
	if !(m.P >= 0 && m.P <= 1) {
		errs = append(errs, fmt.Sprintf("p=%g outside [0, 1]", m.P))
	}
	if m.N < 0 || m.N >= block.Size {
		errs = append(errs, fmt.Sprintf("n=%d outside [0, %d)", m.N, block.Size))
	}

	keys := make([]string, 0, len(m.Files))
	for key := range m.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seenPaths := map[string]string{}
	blocks := 0
	for _, key := range keys {
		f := m.Files[key]
		blocks += f.Blocks

		if f.Source.Width <= 0 || f.Source.Height <= 0 || f.Source.Channels <= 0 {
			errs = append(errs, fmt.Sprintf("file %q: invalid source shape %dx%dx%d",
				key, f.Source.Width, f.Source.Height, f.Source.Channels))
		}
		if want := block.Count(f.Source.Height, f.Source.Width) * f.Source.Channels; f.Blocks != want {
			errs = append(errs, fmt.Sprintf("file %q: %d blocks recorded, shape implies %d", key, f.Blocks, want))
		}
		if f.Output.Hash == "" {
			errs = append(errs, fmt.Sprintf("file %q: missing hash", key))
		}
		if f.Output.Path == "" {
			errs = append(errs, fmt.Sprintf("file %q: missing output path", key))
			continue
		}

		if prev, ok := seenPaths[f.Output.Path]; ok {
			errs = append(errs, fmt.Sprintf("file %q: output %q also claimed by %q", key, f.Output.Path, prev))
		}
		seenPaths[f.Output.Path] = key

		if e := checkOutput(filepath.Join(baseDir, filepath.FromSlash(f.Output.Path)), f.Output); e != "" {
			errs = append(errs, fmt.Sprintf("file %q: %s", key, e))
		}
	}

	if m.Stats.TotalFiles != len(m.Files) {
		errs = append(errs, fmt.Sprintf("stats.total_files mismatch: %d != %d", m.Stats.TotalFiles, len(m.Files)))
	}
	if m.Stats.TotalBlocks != blocks {
		errs = append(errs, fmt.Sprintf("stats.total_blocks mismatch: %d != %d", m.Stats.TotalBlocks, blocks))
	}

	return errs
}

// checkOutput returns a description of the first problem with the file on
// disk, or "" when it matches the record.
func checkOutput(path string, out manifest.OutputInfo) string {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Sprintf("file not found: %s", out.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Sprintf("stat %s: %v", out.Path, err)
	}
	if out.Size > 0 && info.Size() != out.Size {
		return fmt.Sprintf("size mismatch: manifest=%d, disk=%d", out.Size, info.Size())
	}
	if out.Hash == "" {
		return ""
	}
	got, err := hasher.ContentHashReader(f, len(out.Hash))
	if err != nil {
		return fmt.Sprintf("hash %s: %v", out.Path, err)
	}
	if got != out.Hash {
		return fmt.Sprintf("content hash mismatch: manifest=%s, disk=%s", out.Hash, got)
	}
	return ""
}
