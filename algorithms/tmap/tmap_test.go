package tmap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSize(t *testing.T) {
	cases := map[int]int{1: 1, 2: 3, 3: 6, 4: 10, 10: 55}
	for n, want := range cases {
		k, err := Size(n)
		require.NoError(t, err)
		assert.Equal(t, want, k, "size at resolution %d", n)
	}
}

func TestSizeInvalidResolution(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := Size(n)
		assert.ErrorIs(t, err, ErrInvalidResolution, "resolution %d", n)
	}
}

func TestNFromSizeRoundTrip(t *testing.T) {
	for n := 1; n <= 50; n++ {
		k, err := Size(n)
		require.NoError(t, err)

		got, err := NFromSize(k)
		require.NoError(t, err)
		assert.Equal(t, n, got, "resolution recovered from size %d", k)
	}
}

func TestNFromSizeInvalid(t *testing.T) {
	for _, k := range []int{0, -1, 2, 4, 5, 7, 8, 9, 11, 54, 56} {
		_, err := NFromSize(k)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", k)
	}
}

func TestIdentityAtResolutionOne(t *testing.T) {
	forward, err := TopDownFromStartEnd(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, forward)

	inverse, err := StartEndFromTopDown(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, inverse)
}

func TestTopDownFromStartEndKnownValues(t *testing.T) {
	// n=3: start-end order is (0,1),(0,2),(0,3),(1,2),(1,3),(2,3);
	// top-down order is (0,3),(0,2),(1,3),(0,1),(1,2),(2,3).
	forward, err := TopDownFromStartEnd(3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 4, 0, 3, 5}, forward)

	inverse, err := StartEndFromTopDown(3)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0, 4, 2, 5}, inverse)
}

func TestPermutationsAreInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 1; n <= 12; n++ {
		forward, err := TopDownFromStartEnd(n)
		require.NoError(t, err)
		inverse, err := StartEndFromTopDown(n)
		require.NoError(t, err)

		k, err := Size(n)
		require.NoError(t, err)
		payload := make([][]float64, k)
		for i := range payload {
			payload[i] = []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		}

		topDown, err := Apply(forward, payload)
		require.NoError(t, err)
		restored, err := Apply(inverse, topDown)
		require.NoError(t, err)
		assert.Equal(t, payload, restored, "round trip at resolution %d", n)

		// Same in the other direction.
		startEnd, err := Apply(inverse, payload)
		require.NoError(t, err)
		restored, err = Apply(forward, startEnd)
		require.NoError(t, err)
		assert.Equal(t, payload, restored, "reverse round trip at resolution %d", n)
	}
}

func TestPermutationInvalidResolution(t *testing.T) {
	_, err := TopDownFromStartEnd(0)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = StartEndFromTopDown(-3)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestIntervalOrderings(t *testing.T) {
	startEnd, err := IntervalsStartEnd(3)
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3},
	}, startEnd)

	topDown, err := IntervalsTopDown(3)
	require.NoError(t, err)
	assert.Equal(t, []Interval{
		{0, 3}, {0, 2}, {1, 3}, {0, 1}, {1, 2}, {2, 3},
	}, topDown)

	// Reindexing the start-end enumeration must yield the top-down enumeration.
	forward, err := TopDownFromStartEnd(3)
	require.NoError(t, err)
	for i, p := range forward {
		assert.Equal(t, topDown[i], startEnd[p])
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	_, err := Apply([]int{0, 1}, [][]float64{{1}})
	assert.ErrorIs(t, err, ErrInvalidSize)
}
