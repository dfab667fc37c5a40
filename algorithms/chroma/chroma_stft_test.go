package chroma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-scape/algorithms/windowing"
)

func sineWave(freq float64, sampleRate, samples int) []float64 {
	signal := make([]float64, samples)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func dominantBin(frame []float64) int {
	maxBin := 0
	for i, v := range frame {
		if v > frame[maxBin] {
			maxBin = i
		}
	}
	return maxBin
}

func TestComputeChromaPureTone(t *testing.T) {
	const sampleRate = 8000
	cs := NewChromaSTFTDefault(sampleRate)

	// A4 at 440 Hz must land in chroma bin 9.
	signal := sineWave(440, sampleRate, sampleRate)
	window := windowing.NewHann(1024, false)

	frames, err := cs.ComputeChroma(signal, 1024, 512, window)
	require.NoError(t, err)
	require.NotEmpty(t, frames)

	for _, frame := range frames {
		require.Len(t, frame, 12)
		assert.Equal(t, 9, dominantBin(frame))
	}
}

func TestComputeChromaOctaveFolding(t *testing.T) {
	const sampleRate = 8000
	cs := NewChromaSTFTDefault(sampleRate)
	window := windowing.NewHann(1024, false)

	// A3 (220 Hz) folds into the same bin as A4.
	frames, err := cs.ComputeChroma(sineWave(220, sampleRate, sampleRate), 1024, 512, window)
	require.NoError(t, err)
	require.NotEmpty(t, frames)
	assert.Equal(t, 9, dominantBin(frames[0]))
}

func TestComputeChromaEmptySignal(t *testing.T) {
	cs := NewChromaSTFTDefault(8000)
	frames, err := cs.ComputeChroma(nil, 1024, 512, nil)
	require.NoError(t, err)
	assert.Nil(t, frames)
}

func TestChromaLabels(t *testing.T) {
	cs := NewChromaSTFTDefault(44100)
	labels := cs.GetChromaLabels()
	require.Len(t, labels, 12)
	assert.Equal(t, "A", labels[9])
}
