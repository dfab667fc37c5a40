package scape

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-scape/algorithms/tmap"
)

// NumPitchClasses is the width of every pitch-class distribution.
const NumPitchClasses = 12

// minRowMass is the aggregate mass below which an entry is left unnormalised
// to avoid dividing by zero.
const minRowMass = 1e-10

// BuildConfig controls scape assembly.
type BuildConfig struct {
	// Normalise divides every entry by its own pitch-class sum, turning it
	// into a probability distribution over pitch classes.
	Normalise bool `json:"normalise"`

	// TopDown selects the top-down output ordering; the default is the
	// start-end ordering.
	TopDown bool `json:"top_down"`
}

// DefaultBuildConfig returns the default build configuration
func DefaultBuildConfig() *BuildConfig {
	return &BuildConfig{
		Normalise: true,
		TopDown:   false,
	}
}

// Build derives the full triangular scape from n base pitch-class vectors,
// one per base time-unit. The entry for interval [s, e) is the elementwise
// sum of base vectors s through e-1, so the single coarsest entry is the sum
// of the whole piece. Rows are assembled bottom-up: each coarser row extends
// every interval of the previous row by one base unit.
//
// The result has k = n(n+1)/2 entries of width 12, in start-end order unless
// cfg.TopDown is set.
func Build(base [][]float64, cfg *BuildConfig) ([][]float64, error) {
	if cfg == nil {
		cfg = DefaultBuildConfig()
	}

	n := len(base)
	k, err := tmap.Size(n)
	if err != nil {
		return nil, err
	}
	for i, row := range base {
		if len(row) != NumPitchClasses {
			return nil, fmt.Errorf("base vector %d has %d pitch classes, want %d",
				i, len(row), NumPitchClasses)
		}
	}

	// Flat arena of all k entries. Row r holds the n-r intervals of length
	// r+1 and begins at offset r*n - r(r-1)/2; row 0 is the base itself.
	arena := make([][]float64, k)
	for i, row := range base {
		arena[i] = append([]float64(nil), row...)
	}
	for r := 1; r < n; r++ {
		prevOff, rowOff := rowOffset(r-1, n), rowOffset(r, n)
		for i := 0; i < n-r; i++ {
			entry := append([]float64(nil), arena[prevOff+i]...)
			floats.Add(entry, base[i+r])
			arena[rowOff+i] = entry
		}
	}

	// Reading rows coarsest-first yields the top-down linearization.
	flattened := make([][]float64, 0, k)
	for r := n - 1; r >= 0; r-- {
		off := rowOffset(r, n)
		flattened = append(flattened, arena[off:off+n-r]...)
	}

	if !cfg.TopDown {
		perm, err := tmap.StartEndFromTopDown(n)
		if err != nil {
			return nil, err
		}
		flattened, err = tmap.Apply(perm, flattened)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Normalise {
		Normalise(flattened)
	}

	return flattened, nil
}

// rowOffset returns the arena offset of row r at resolution n.
func rowOffset(r, n int) int {
	return r*n - r*(r-1)/2
}

// Normalise rescales every entry in place to sum to one across pitch classes.
// Entries with no mass are left untouched.
func Normalise(entries [][]float64) {
	for _, entry := range entries {
		total := floats.Sum(entry)
		if total > minRowMass {
			floats.Scale(1/total, entry)
		}
	}
}

// BinFrames collapses an (nFrames, 12) matrix of per-frame pitch-class
// energies into n window sums of equal time width. Window boundaries are
// round(idx/n * nFrames); the final window absorbs any rounding remainder.
func BinFrames(frames [][]float64, n int) ([][]float64, error) {
	if _, err := tmap.Size(n); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no feature frames to bin")
	}
	for i, frame := range frames {
		if len(frame) != NumPitchClasses {
			return nil, fmt.Errorf("frame %d has %d pitch classes, want %d",
				i, len(frame), NumPitchClasses)
		}
	}

	nFrames := len(frames)
	binned := make([][]float64, n)
	for idx := 0; idx < n; idx++ {
		start := windowBoundary(idx, n, nFrames)
		end := windowBoundary(idx+1, n, nFrames)
		if idx == n-1 {
			end = nFrames
		}
		window := make([]float64, NumPitchClasses)
		for f := start; f < end; f++ {
			floats.Add(window, frames[f])
		}
		binned[idx] = window
	}
	return binned, nil
}

func windowBoundary(idx, n, nFrames int) int {
	b := int(float64(idx)/float64(n)*float64(nFrames) + 0.5)
	if b > nFrames {
		b = nFrames
	}
	return b
}
