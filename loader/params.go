package loader

import (
	"bytes"
	"encoding/json"
	"maps"
)

// Params holds the extraction parameters passed to feature extractors. They
// are persisted alongside cached scapes and checked for consistency when a
// cache entry is reused.
type Params map[string]any

// ParamNormalise is the parameter selecting per-entry L1 normalization of the
// computed scape. It defaults to true when unset.
const ParamNormalise = "normalise"

// withDefaults returns a copy of p with default parameters filled in.
func (p Params) withDefaults() Params {
	merged := Params{ParamNormalise: true}
	maps.Copy(merged, p)
	return merged
}

// Normalise reports whether normalization is requested, defaulting to true.
func (p Params) Normalise() bool {
	v, ok := p[ParamNormalise]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	return !ok || b
}

// canonical returns the sorted-key JSON encoding of the parameters. JSON
// object keys are emitted in sorted order by encoding/json, which makes the
// encoding a stable identity for equality checks across runs — and across a
// round trip through a cache file, since cached numbers decode to the same
// float64 values they were encoded from.
func (p Params) canonical() ([]byte, error) {
	if p == nil {
		p = Params{}
	}
	return json.Marshal(p)
}

// Equal reports whether two parameter sets are structurally identical.
func (p Params) Equal(other Params) bool {
	a, err := p.canonical()
	if err != nil {
		return false
	}
	b, err := other.canonical()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}
