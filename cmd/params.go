package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/AnyUserName/dctscramble-cli/internal/hasher"
	"github.com/AnyUserName/dctscramble-cli/internal/profile"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
	"github.com/spf13/cobra"
)

// keyEnv is read when --seed is not given, so the key can stay out of shell history.
const keyEnv = "DCTSCRAMBLE_KEY"

// paramFlags are the scramble parameters shared by scramble, descramble and batch.
type paramFlags struct {
	seed    string
	p       float64
	n       int
	profile string
	workers int
	format  string
	quality int
}

func (f *paramFlags) register(cmd *cobra.Command, workersName, workersUsage string) {
	fs := cmd.Flags()
	fs.StringVarP(&f.seed, "seed", "s", "", "key: integer in [0, 2^32) or any passphrase (default $"+keyEnv+")")
	fs.Float64Var(&f.p, "p", 0, "probability a mask entry is -1, in [0, 1] (default from profile)")
	fs.IntVar(&f.n, "n", 0, "scramble rows and columns >= n of each block, in [0, 8) (default from profile)")
	fs.StringVar(&f.profile, "profile", profile.DefaultName, "parameter preset")
	fs.IntVar(&f.workers, workersName, 0, workersUsage)
	fs.StringVarP(&f.format, "format", "f", "", "output format (default from output extension or profile)")
	fs.IntVarP(&f.quality, "quality", "q", 0, "quality 1-100 for lossy descramble output (0 = encoder default)")
}

// resolve merges the profile with explicitly set flags.
func (f *paramFlags) resolve(cmd *cobra.Command, mode scramble.Mode) (scramble.Params, profile.Profile, error) {
	prof, err := profile.Get(f.profile)
	if err != nil {
		return scramble.Params{}, prof, err
	}
	if cmd.Flags().Changed("p") {
		prof.P = f.p
	}
	if cmd.Flags().Changed("n") {
		prof.N = f.n
	}
	if cmd.Flags().Changed("format") {
		prof.Format = f.format
	}

	key := f.seed
	if key == "" {
		key = os.Getenv(keyEnv)
	}
	seed, err := hasher.SeedFromKey(key)
	if errors.Is(err, hasher.ErrEmptyKey) {
		return scramble.Params{}, prof, fmt.Errorf("a key is required: pass --seed or set $%s", keyEnv)
	}
	if err != nil {
		return scramble.Params{}, prof, fmt.Errorf("seed: %w", err)
	}

	params := scramble.Params{
		Seed:    seed,
		P:       prof.P,
		N:       prof.N,
		Mode:    mode,
		Workers: f.workers,
	}
	if err := params.Validate(); err != nil {
		return params, prof, err
	}
	return params, prof, nil
}
