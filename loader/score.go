package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-scape/algorithms/scape"
)

// NoteEvent is one note of a symbolic score: a pitch sounding for Duration
// time-units starting at Onset. Weight scales its contribution and defaults
// to 1 (useful for grace notes or voice weighting).
type NoteEvent struct {
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
	Pitch    int     `json:"pitch"` // MIDI note number
	Weight   float64 `json:"weight,omitempty"`
}

// JSONScoreExtractor is the default ScoreExtractor. It reads a JSON array of
// note events and accumulates duration-weighted pitch-class mass over n equal
// time windows spanning the piece, then builds the triangular scape. Any
// score format can be supported by converting it to this note list, or by
// injecting a different ScoreExtractor into the loader.
type JSONScoreExtractor struct{}

// NewJSONScoreExtractor creates the default score extractor
func NewJSONScoreExtractor() *JSONScoreExtractor {
	return &JSONScoreExtractor{}
}

// ExtractScape reads the note list and returns the (k, 12) scape in
// start-end order
func (e *JSONScoreExtractor) ExtractScape(ctx context.Context, filePath string, n int, params Params) ([][]float64, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var notes []NoteEvent
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("parsing note events from %s: %w", filePath, err)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no note events in %s", filePath)
	}

	base, err := binNotes(notes, n)
	if err != nil {
		return nil, err
	}

	return scape.Build(base, &scape.BuildConfig{
		Normalise: params.Normalise(),
		TopDown:   false,
	})
}

// binNotes distributes duration-weighted pitch-class mass over n equal
// windows covering [0, span), where span is the end of the last note.
func binNotes(notes []NoteEvent, n int) ([][]float64, error) {
	span := 0.0
	for i, note := range notes {
		if note.Duration < 0 {
			return nil, fmt.Errorf("note %d has negative duration %f", i, note.Duration)
		}
		if end := note.Onset + note.Duration; end > span {
			span = end
		}
	}
	if span <= 0 {
		return nil, fmt.Errorf("score has zero duration")
	}

	base := make([][]float64, n)
	for i := range base {
		base[i] = make([]float64, scape.NumPitchClasses)
	}

	windowWidth := span / float64(n)
	for _, note := range notes {
		weight := note.Weight
		if weight == 0 {
			weight = 1
		}
		pc := ((note.Pitch % scape.NumPitchClasses) + scape.NumPitchClasses) % scape.NumPitchClasses

		noteEnd := note.Onset + note.Duration
		for idx := 0; idx < n; idx++ {
			windowStart := float64(idx) * windowWidth
			windowEnd := float64(idx+1) * windowWidth
			overlap := min(noteEnd, windowEnd) - max(note.Onset, windowStart)
			if overlap > 0 {
				base[idx][pc] += overlap * weight
			}
		}
	}

	return base, nil
}
