package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AnyUserName/dctscramble-cli/internal/encoder"
	"github.com/AnyUserName/dctscramble-cli/internal/pipeline"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		newFileCmd(scramble.ModeScramble, "Scramble one image with a key",
			`Reads an image (png, jpeg, gif, bmp, tiff, webp or .dcsg grid), flips the
signs of its block-DCT coefficients under the key and writes the result.

Scrambled output is always written in a lossless format; a lossy format is
refused because any change to the samples is amplified on descramble.`),
		newFileCmd(scramble.ModeDescramble, "Restore a scrambled image with its key",
			`Reverses scramble. The key, p, n (or profile) must match the ones used to
scramble, and the scrambled file must be unchanged. A wrong key or an edited
file yields noise; no error is reported.`),
	)
}

// newFileCmd builds the scramble or descramble command. Both share flags
// so that the exact same invocation with the mode swapped restores an image.
func newFileCmd(mode scramble.Mode, short, long string) *cobra.Command {
	var (
		flags  paramFlags
		outArg string
	)
	cmd := &cobra.Command{
		Use:   mode.String() + " <input>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, args[0], outArg, mode, &flags)
		},
	}
	cmd.Flags().StringVarP(&outArg, "out", "o", "", "output file (default <input>."+mode.String()+"d.<ext>)")
	flags.register(cmd, "workers", "parallel block workers (0 = sequential, -1 = NumCPU)")
	return cmd
}

func runFile(cmd *cobra.Command, in, out string, mode scramble.Mode, flags *paramFlags) error {
	start := time.Now()

	params, prof, err := flags.resolve(cmd, mode)
	if err != nil {
		return err
	}

	// An explicit --format wins, then the -o extension, then the profile.
	format := prof.Format
	if out != "" && !cmd.Flags().Changed("format") {
		if f := encoder.FormatFromPath(out); f != "" {
			format = f
		}
	}

	registry := encoder.NewRegistry()
	logVerbose("%s", registry.String())
	enc, err := registry.Resolve(format, mode == scramble.ModeScramble)
	if err != nil {
		return err
	}
	if out == "" {
		out = defaultOutput(in, mode, enc.Extension())
	}

	logVerbose("input:   %s", in)
	logVerbose("output:  %s (%s)", out, enc.Format())
	logVerbose("profile: %s (p=%g, n=%d)", prof.Name, params.P, params.N)

	rec, err := pipeline.ProcessOne(pipeline.Job{
		InPath:  in,
		OutPath: out,
		Params:  params,
		Encoder: enc,
		Quality: flags.quality,
		Metric:  true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("  %sd %s -> %s\n", mode, in, out)
	fmt.Printf("  Grid:    %dx%dx%d@%d, %d blocks\n",
		rec.Source.Width, rec.Source.Height, rec.Source.Channels, rec.Source.Depth, rec.Blocks)
	fmt.Printf("  Size:    %s -> %s\n", formatBytes(rec.Source.Size), formatBytes(rec.Output.Size))
	if rec.Metric != nil {
		if rec.Metric.Identical {
			fmt.Println("  Change:  none (identical samples)")
		} else {
			fmt.Printf("  Change:  MSE %.4f, PSNR %.2f dB\n", rec.Metric.MSE, *rec.Metric.PSNR)
		}
	}
	if rec.Clamped > 0 {
		fmt.Printf("  Warning: %d samples clamped; they will not restore exactly\n", rec.Clamped)
	}
	logVerbose("done in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// defaultOutput derives "photo.scrambled.png" from "photo.jpg".
func defaultOutput(in string, mode scramble.Mode, ext string) string {
	base := strings.TrimSuffix(in, filepath.Ext(in))
	return fmt.Sprintf("%s.%sd.%s", base, mode, ext)
}
