package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dctscramble",
	Short: "Reversible keyed scrambling of images in the 8x8 DCT domain",
	Long: `dctscramble flips the signs of block-DCT coefficients under a key so an
image becomes unrecognizable, and restores it exactly with the same key.

Each channel is cut into 8x8 blocks. Coefficients in rows and columns >= n
of every block are multiplied by a keyed random ±1 mask (descramble divides
by the same mask). The scrambled image must be stored losslessly.`,
	Version:       version,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"dctscramble %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[dctscramble] "+format+"\n", args...)
	}
}
