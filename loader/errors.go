package loader

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-scape/algorithms/tmap"
)

// ErrInvalidResolution reports a resolution that is not a positive integer.
// It is the same sentinel used by the index arithmetic so callers can match
// either layer with a single errors.Is check.
var ErrInvalidResolution = tmap.ErrInvalidResolution

var (
	// ErrInvalidInput reports a nil, empty, or non-regular-file path.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFileNotFound reports a source file that does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied reports a source file that exists but cannot be read.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrExtraction reports a failure inside a feature extractor.
	ErrExtraction = errors.New("feature extraction failed")
)

// ParamMismatchError reports a cache entry whose stored extraction parameters
// differ from the ones requested. Stale caches are never silently reused with
// different semantics; recomputation must be requested explicitly.
type ParamMismatchError struct {
	CacheFile string
	Requested Params
	Cached    Params
}

func (e *ParamMismatchError) Error() string {
	return fmt.Sprintf("cache file %s was computed with different parameters:\n"+
		"    requested: %v\n"+
		"    cached: %v\n"+
		"set RecomputeCache to recompute and overwrite", e.CacheFile, e.Requested, e.Cached)
}
