package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/dctscramble-cli/internal/encoder"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the relative path without extension, slash separated.
	Key string
	// Format is the normalized source format (png, jpeg, webp, ..., dcsg).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions lists recognized input file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".dcsg": true,
}

// ScanImages walks the input directory and returns all image sources.
// Hidden directories and any directory listed in exclude are skipped.
func ScanImages(inputDir string, exclude ...string) ([]Source, error) {
	var sources []Source

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if abs, err := filepath.Abs(e); err == nil {
			skip[abs] = true
		}
	}

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(path); err == nil && skip[abs] && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExtensions[ext] {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath))),
			Format:  encoder.NormalizeFormat(ext),
			Size:    info.Size(),
		})

		return nil
	})

	return sources, err
}
