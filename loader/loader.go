// Package loader computes, caches, and aggregates pitch scapes: triangular
// collections of pitch-class distributions covering every sub-interval of a
// piece at a fixed base resolution.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-scape/algorithms/scape"
	"github.com/RyanBlaney/sonido-scape/algorithms/tmap"
	"github.com/RyanBlaney/sonido-scape/logging"
)

// Ordering selects the linearization of the triangular scape.
type Ordering string

const (
	// OrderingTopDown groups entries by interval length, coarsest first.
	OrderingTopDown Ordering = "top_down"
	// OrderingStartEnd sorts entries lexicographically by (start, end).
	OrderingStartEnd Ordering = "start_end"
)

// Config holds loader configuration
type Config struct {
	// UseCache enables the per-file disk cache. Cached entries are reused on
	// subsequent calls with identical extraction parameters.
	UseCache bool `json:"use_cache"`

	// RecomputeCache forces recomputation, overwriting existing cache entries.
	RecomputeCache bool `json:"recompute_cache"`

	// IsAudio overrides audio/symbolic routing. When nil, files are sniffed
	// by extension against AudioExtensions.
	IsAudio *bool `json:"is_audio,omitempty"`

	// AudioExtensions lists the file extensions treated as audio.
	AudioExtensions []string `json:"audio_extensions"`

	// StripExtension drops the source extension from cache keys so different
	// representations of the same piece share one cache entry.
	StripExtension bool `json:"strip_extension"`

	// Ordering of the returned scape array.
	Ordering Ordering `json:"ordering"`

	// Params are passed to the feature extractors and stored with cache
	// entries. Normalise defaults to true.
	Params Params `json:"params,omitempty"`
}

// DefaultConfig returns the default loader configuration
func DefaultConfig() *Config {
	return &Config{
		UseCache:        false,
		AudioExtensions: []string{".wav", ".mp3", ".ogg"},
		Ordering:        OrderingTopDown,
	}
}

// Loader computes pitch scapes for single files, with optional
// parameter-validated disk caching.
type Loader struct {
	config *Config
	audio  AudioExtractor
	score  ScoreExtractor
	logger logging.Logger
}

// New creates a loader with the default extractors (STFT chroma for audio,
// JSON note lists for symbolic scores)
func New(config *Config) *Loader {
	if config == nil {
		config = DefaultConfig()
	}
	return &Loader{
		config: config,
		audio:  NewSTFTAudioExtractor(nil),
		score:  NewJSONScoreExtractor(),
		logger: logging.WithFields(logging.Fields{"component": "scape_loader"}),
	}
}

// SetAudioExtractor replaces the audio feature extractor
func (l *Loader) SetAudioExtractor(extractor AudioExtractor) {
	l.audio = extractor
}

// SetScoreExtractor replaces the symbolic score extractor
func (l *Loader) SetScoreExtractor(extractor ScoreExtractor) {
	l.score = extractor
}

// Config returns the loader configuration
func (l *Loader) Config() *Config {
	return l.config
}

// Load computes the pitch scape of one file at resolution n, returning an
// array of shape (k, 12) with k = n(n+1)/2 in the configured ordering.
//
// With caching enabled, a previously computed (scape, parameters) pair is
// reused if its parameters exactly match the configured ones; a mismatch is
// a *ParamMismatchError, never a silent recompute. Cache entries always hold
// the start-end ordering; the requested ordering is applied on the way out.
func (l *Loader) Load(ctx context.Context, filePath string, n int) ([][]float64, error) {
	params := l.config.Params.withDefaults()

	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResolution, n)
	}
	if err := validatePath(filePath); err != nil {
		return nil, err
	}

	cacheFile := CacheFilePath(filePath, n, l.config.StripExtension)

	var pcd [][]float64
	cached := false
	if l.config.UseCache && !l.config.RecomputeCache {
		if _, err := os.Stat(cacheFile); err == nil {
			entry, err := readCache(cacheFile)
			if err != nil {
				return nil, err
			}
			if !entry.Params.Equal(params) {
				return nil, &ParamMismatchError{
					CacheFile: cacheFile,
					Requested: params,
					Cached:    entry.Params,
				}
			}
			pcd = entry.Scape
			cached = true
			l.logger.Debug("Loaded scape from cache", logging.Fields{
				"file":       filePath,
				"cache_file": cacheFile,
				"resolution": n,
			})
		}
	}

	if !cached {
		var err error
		pcd, err = l.compute(ctx, filePath, n, params)
		if err != nil {
			return nil, err
		}
		if l.config.UseCache {
			if err := writeCache(cacheFile, pcd, params); err != nil {
				return nil, err
			}
			l.logger.Debug("Stored scape in cache", logging.Fields{
				"file":       filePath,
				"cache_file": cacheFile,
				"resolution": n,
			})
		}
	}

	return l.reorder(pcd)
}

// compute extracts features and builds the scape in start-end order.
func (l *Loader) compute(ctx context.Context, filePath string, n int, params Params) ([][]float64, error) {
	if l.isAudio(filePath) {
		frames, err := l.audio.ExtractFrames(ctx, filePath, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, filePath, err)
		}
		base, err := scape.BinFrames(frames, n)
		if err != nil {
			return nil, err
		}
		return scape.Build(base, &scape.BuildConfig{
			Normalise: params.Normalise(),
			TopDown:   false,
		})
	}

	pcd, err := l.score.ExtractScape(ctx, filePath, n, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, filePath, err)
	}
	return pcd, nil
}

// reorder converts a start-end ordered scape to the configured ordering,
// recovering the resolution from the array length.
func (l *Loader) reorder(pcd [][]float64) ([][]float64, error) {
	if l.config.Ordering == OrderingStartEnd {
		return pcd, nil
	}
	n, err := tmap.NFromSize(len(pcd))
	if err != nil {
		return nil, err
	}
	perm, err := tmap.TopDownFromStartEnd(n)
	if err != nil {
		return nil, err
	}
	return tmap.Apply(perm, pcd)
}

// isAudio classifies a file as audio, preferring the explicit override and
// falling back to extension sniffing.
func (l *Loader) isAudio(filePath string) bool {
	if l.config.IsAudio != nil {
		return *l.config.IsAudio
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, audioExt := range l.config.AudioExtensions {
		if ext == strings.ToLower(audioExt) {
			return true
		}
	}
	return false
}

// validatePath fails fast on paths that cannot possibly be loaded.
func validatePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("%w: empty file path", ErrInvalidInput)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, filePath)
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, filePath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidInput, filePath)
	}

	// Probe readability so permission problems surface before extraction.
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, filePath)
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, filePath, err)
	}
	return f.Close()
}
