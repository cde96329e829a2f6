package breakdown

import "math"

// Parameter ranges and defaults for the music model.
const (
	MinBPM     = 60
	MaxBPM     = 180
	DefaultBPM = 90

	MinGuidance     = 1.0
	MaxGuidance     = 10.0
	DefaultGuidance = 7.0

	MinDensity     = 0.0
	MaxDensity     = 1.0
	DefaultDensity = 0.5
)

// RawParams is the untrusted parameter mapping returned by the
// analysis model. Any of bpm/guidance/density may be absent or of an
// unexpected type.
type RawParams map[string]any

// DefaultParams returns the parameters used when the request carries
// no usable values of its own.
func DefaultParams() Params {
	return Params{
		BPM:      DefaultBPM,
		Guidance: DefaultGuidance,
		Density:  DefaultDensity,
	}
}

// ClampParams fills absent fields from the global defaults and clamps
// every value into its valid range.
func ClampParams(raw RawParams) Params {
	return clampWithDefaults(raw, DefaultParams())
}

// Reconcile produces the final (components, parameters) pair for one
// request. The semantic merging on edits ("add more piano") is
// delegated to the analysis model, which already saw the previous
// state; this function only guarantees that whatever came back is
// normalized and in range, so a malformed or partial model response
// can never propagate. On an edit, parameter fields the model left out
// are carried forward from the previous result instead of the global
// defaults.
func Reconcile(isEdit bool, previous *TrackContext, freshComponents []Candidate, freshParams RawParams) ([]WeightedPrompt, Params, error) {
	components, err := Normalize(freshComponents)
	if err != nil {
		return nil, Params{}, err
	}

	defaults := DefaultParams()
	if isEdit && previous != nil {
		defaults = previous.Params
	}

	return components, clampWithDefaults(freshParams, defaults), nil
}

func clampWithDefaults(raw RawParams, defaults Params) Params {
	bpm := resolveNumeric(raw, "bpm", float64(defaults.BPM))
	guidance := resolveNumeric(raw, "guidance", defaults.Guidance)
	density := resolveNumeric(raw, "density", defaults.Density)

	return Params{
		BPM:      clampInt(int(math.Round(bpm)), MinBPM, MaxBPM),
		Guidance: clampFloat(guidance, MinGuidance, MaxGuidance),
		Density:  clampFloat(density, MinDensity, MaxDensity),
	}
}

// resolveNumeric reads a numeric field out of the raw mapping,
// falling back to def when the key is absent or not coercible.
func resolveNumeric(raw RawParams, key string, def float64) float64 {
	if raw == nil {
		return def
	}
	v, exists := raw[key]
	if !exists || v == nil {
		return def
	}
	f, ok := coerceFloat(v)
	if !ok {
		return def
	}
	return f
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
