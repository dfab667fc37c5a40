package loader

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-scape/algorithms/chroma"
	"github.com/RyanBlaney/sonido-scape/algorithms/windowing"
	"github.com/RyanBlaney/sonido-scape/transcode"
)

// AudioExtractor turns an audio file into a (frames, 12) matrix of per-frame
// pitch-class energies. The loader bins those frames into base time-units and
// builds the scape itself.
type AudioExtractor interface {
	ExtractFrames(ctx context.Context, filePath string, params Params) ([][]float64, error)
}

// ScoreExtractor turns a symbolic score file directly into a (k, 12) scape in
// start-end order, honoring the normalise parameter.
type ScoreExtractor interface {
	ExtractScape(ctx context.Context, filePath string, n int, params Params) ([][]float64, error)
}

// STFTConfig configures the default STFT-based audio extractor.
type STFTConfig struct {
	WindowSize int     `json:"window_size"`
	HopSize    int     `json:"hop_size"`
	TuningFreq float64 `json:"tuning_freq"` // A4 reference frequency

	Decoder *transcode.DecoderConfig `json:"decoder,omitempty"`
}

// DefaultSTFTConfig returns the default STFT extraction configuration
func DefaultSTFTConfig() *STFTConfig {
	return &STFTConfig{
		WindowSize: 4096,
		HopSize:    1024,
		TuningFreq: 440.0,
	}
}

// STFTAudioExtractor is the default AudioExtractor: ffmpeg decode to mono PCM,
// then an STFT chromagram with a Hann window.
type STFTAudioExtractor struct {
	config  *STFTConfig
	decoder *transcode.Decoder
}

// NewSTFTAudioExtractor creates the default audio extractor
func NewSTFTAudioExtractor(config *STFTConfig) *STFTAudioExtractor {
	if config == nil {
		config = DefaultSTFTConfig()
	}
	return &STFTAudioExtractor{
		config:  config,
		decoder: transcode.NewDecoder(config.Decoder),
	}
}

// ExtractFrames decodes the file and computes per-frame pitch-class energies
func (e *STFTAudioExtractor) ExtractFrames(ctx context.Context, filePath string, params Params) ([][]float64, error) {
	audioData, err := e.decoder.DecodeFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	cs := chroma.NewChromaSTFT(audioData.SampleRate, e.config.TuningFreq)
	window := windowing.NewHann(e.config.WindowSize, false)

	frames, err := cs.ComputeChroma(audioData.PCM, e.config.WindowSize, e.config.HopSize, window)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no feature frames extracted from %s", filePath)
	}
	return frames, nil
}
