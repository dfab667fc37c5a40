package tmap

import (
	"errors"
	"fmt"
)

// Triangular map index arithmetic for pitch scapes.
//
// A scape of resolution n holds one 12-dimensional pitch-class distribution for
// every sub-interval [s, e) of a piece split into n base time-units, which makes
// k = n(n+1)/2 entries in total. The same k entries admit two canonical
// linearizations:
//   - start-end: sorted lexicographically by the (start, end) boundary pair
//   - top-down: grouped by interval length, coarsest first, left to right
//
// Both orderings are pure functions of n, so the permutations between them are
// computed once per resolution and reused for every piece.

var (
	// ErrInvalidResolution reports a resolution that is not a positive integer.
	ErrInvalidResolution = errors.New("resolution must be a positive integer")

	// ErrInvalidSize reports a linear size that is not of the form n(n+1)/2.
	ErrInvalidSize = errors.New("size is not a triangular number")
)

// Interval identifies one scape entry by its base time-unit boundaries,
// covering units [Start, End).
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Size returns the number of scape entries k = n(n+1)/2 at resolution n.
func Size(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidResolution, n)
	}
	return n * (n + 1) / 2, nil
}

// NFromSize recovers the resolution n from a linear scape size k. A size that
// does not solve n(n+1)/2 = k for a positive integer n is invalid.
func NFromSize(k int) (int, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidSize, k)
	}
	// n is the integer root of n^2 + n - 2k = 0; search from the float estimate
	// to dodge any rounding at large k.
	n := intSqrtEstimate(k)
	for candidate := max(n-2, 1); candidate <= n+2; candidate++ {
		if candidate*(candidate+1)/2 == k {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w: got %d", ErrInvalidSize, k)
}

func intSqrtEstimate(k int) int {
	// floor(sqrt(2k)) without math.Sqrt precision concerns for the sizes in play
	n := 0
	for (n+1)*(n+1) <= 2*k {
		n++
	}
	return n
}

// IntervalsStartEnd enumerates the (start, end) intervals at resolution n in
// start-end order.
func IntervalsStartEnd(n int) ([]Interval, error) {
	k, err := Size(n)
	if err != nil {
		return nil, err
	}
	intervals := make([]Interval, 0, k)
	for s := 0; s < n; s++ {
		for e := s + 1; e <= n; e++ {
			intervals = append(intervals, Interval{Start: s, End: e})
		}
	}
	return intervals, nil
}

// IntervalsTopDown enumerates the (start, end) intervals at resolution n in
// top-down order.
func IntervalsTopDown(n int) ([]Interval, error) {
	k, err := Size(n)
	if err != nil {
		return nil, err
	}
	intervals := make([]Interval, 0, k)
	for length := n; length >= 1; length-- {
		for s := 0; s+length <= n; s++ {
			intervals = append(intervals, Interval{Start: s, End: s + length})
		}
	}
	return intervals, nil
}

// startEndIndex returns the linear index of interval [s, e) in start-end order.
// Row s begins at offset s*n - s(s-1)/2.
func startEndIndex(n, s, e int) int {
	return s*n - s*(s-1)/2 + (e - s - 1)
}

// TopDownFromStartEnd returns the permutation that reindexes a start-end
// ordered array into top-down order: out[i] = in[perm[i]].
func TopDownFromStartEnd(n int) ([]int, error) {
	intervals, err := IntervalsTopDown(n)
	if err != nil {
		return nil, err
	}
	perm := make([]int, len(intervals))
	for i, iv := range intervals {
		perm[i] = startEndIndex(n, iv.Start, iv.End)
	}
	return perm, nil
}

// StartEndFromTopDown returns the permutation that reindexes a top-down
// ordered array into start-end order. It is the inverse of
// TopDownFromStartEnd: applying one after the other restores the input.
func StartEndFromTopDown(n int) ([]int, error) {
	forward, err := TopDownFromStartEnd(n)
	if err != nil {
		return nil, err
	}
	inverse := make([]int, len(forward))
	for i, p := range forward {
		inverse[p] = i
	}
	return inverse, nil
}

// Apply reindexes rows by a permutation: out[i] = rows[perm[i]]. The row
// payloads are shared, not copied.
func Apply(perm []int, rows [][]float64) ([][]float64, error) {
	if len(perm) != len(rows) {
		return nil, fmt.Errorf("%w: permutation length %d does not match %d rows",
			ErrInvalidSize, len(perm), len(rows))
	}
	out := make([][]float64, len(rows))
	for i, p := range perm {
		if p < 0 || p >= len(rows) {
			return nil, fmt.Errorf("%w: permutation entry %d out of range", ErrInvalidSize, p)
		}
		out[i] = rows[p]
	}
	return out, nil
}
