package cmd

import (
	"fmt"

	"github.com/AnyUserName/dctscramble-cli/internal/encoder"
	"github.com/AnyUserName/dctscramble-cli/internal/metric"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Print MSE and PSNR between two images of the same shape",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := encoder.DecodeFile(args[0])
	if err != nil {
		return err
	}
	b, err := encoder.DecodeFile(args[1])
	if err != nil {
		return err
	}
	logVerbose("a: %s", a)
	logVerbose("b: %s", b)

	r, err := metric.Compare(a, b)
	if err != nil {
		return fmt.Errorf("compare %s (%s) with %s (%s): %w", args[0], a, args[1], b, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), r)
	return nil
}
