package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Profile is a named set of scramble parameters.
type Profile struct {
	Name        string
	P           float64 // probability a mask entry is -1
	N           int     // scramble region bound
	Format      string  // default output format
	Description string
}

// DefaultName is used when no profile is requested.
const DefaultName = "light"

// Built-in profiles.
var profiles = map[string]Profile{
	"light": {
		Name:        "light",
		P:           0.1,
		N:           1,
		Format:      "png",
		Description: "few sign flips above the first row/column; outlines stay faintly visible",
	},
	"balanced": {
		Name:        "balanced",
		P:           0.5,
		N:           1,
		Format:      "png",
		Description: "half of the detail coefficients flipped; coarse colour layout survives",
	},
	"strong": {
		Name:        "strong",
		P:           0.5,
		N:           0,
		Format:      "png",
		Description: "whole block including the DC term; strongest disruption, most clamping",
	},
}

// Get returns a profile by name. Unknown names are an error rather than a
// silent fallback: descrambling needs the exact parameters used to scramble.
func Get(name string) (Profile, error) {
	if name == "" {
		name = DefaultName
	}
	if p, ok := profiles[strings.ToLower(name)]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the built-in profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
