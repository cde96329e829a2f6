// Package breakdown validates and normalizes the weighted prompt
// components and generation parameters produced by the analysis model.
// It is a pure in-memory transformation: the callers own all I/O.
package breakdown

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxComponentTextLen is the upper bound for a component tag.
	// Anything longer is almost always the model echoing the full
	// input prompt instead of a short tag, so it gets dropped.
	MaxComponentTextLen = 50
)

// Error taxonomy surfaced to the HTTP layer. None of these are
// recovered from internally - a failed breakdown must never degrade
// into a silently substituted default track.
var (
	// ErrEmptyInput means the candidate list was empty before filtering.
	ErrEmptyInput = errors.New("breakdown: candidate list is empty")

	// ErrNoValidComponents means every candidate was rejected by the
	// shape/length filter.
	ErrNoValidComponents = errors.New("breakdown: no valid components after validation")

	// ErrMalformedUpstream means the collaborator response could not be
	// parsed into the expected shape.
	ErrMalformedUpstream = errors.New("breakdown: malformed upstream response")

	// ErrUpstreamUnavailable means the analysis or generation
	// collaborator is not configured or could not be reached.
	ErrUpstreamUnavailable = errors.New("breakdown: upstream model unavailable")
)

// WeightedPrompt is a short text tag paired with a numeric influence
// weight. Within any list returned by Normalize the weights are
// non-negative and sum to 1.0.
type WeightedPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Params are the numeric generation parameters handed to the music
// model. All values are clamped into their valid ranges.
type Params struct {
	BPM      int     `json:"bpm"`
	Guidance float64 `json:"guidance"`
	Density  float64 `json:"density"`
}

// TrackContext is the most recently produced result, supplied by the
// caller on an edit request. It is read-only to this package; session
// persistence is the caller's concern.
type TrackContext struct {
	WeightedPrompts []WeightedPrompt `json:"weighted_prompts"`
	Params          Params           `json:"parameters"`
}

// Candidate is one untrusted (text, weight) pair from the analysis
// model or from user input. Both fields are untyped on purpose and get
// defensively validated by Normalize.
type Candidate struct {
	Text   any `json:"text"`
	Weight any `json:"weight"`
}

// Normalize filters invalid candidates and rescales the surviving
// weights so they sum to 1.0. When every surviving weight is zero the
// components get uniform weights instead. Output order matches input
// order; no component is ever synthesized or rewritten.
func Normalize(candidates []Candidate) ([]WeightedPrompt, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyInput
	}

	surviving := make([]WeightedPrompt, 0, len(candidates))
	for _, cand := range candidates {
		text, ok := coerceText(cand.Text)
		if !ok {
			continue
		}
		if cand.Weight == nil {
			// Structurally missing weight field
			continue
		}
		if utf8.RuneCountInString(text) > MaxComponentTextLen {
			// Looks like the full prompt, not a tag
			continue
		}
		weight, _ := coerceFloat(cand.Weight)
		if weight < 0 {
			weight = 0
		}
		surviving = append(surviving, WeightedPrompt{Text: text, Weight: weight})
	}

	if len(surviving) == 0 {
		return nil, ErrNoValidComponents
	}

	var total float64
	for _, wp := range surviving {
		total += wp.Weight
	}

	if total > 0 {
		for i := range surviving {
			surviving[i].Weight /= total
		}
	} else {
		uniform := 1.0 / float64(len(surviving))
		for i := range surviving {
			surviving[i].Weight = uniform
		}
	}

	return surviving, nil
}

// coerceText accepts only string-typed text and returns it trimmed.
// Empty (after trimming) or non-string text is not a usable tag.
func coerceText(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// coerceFloat converts the loosely-typed numeric values JSON decoding
// can produce. Numeric strings coerce too; everything else reads as 0.
func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
