package breakdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weightTolerance = 1e-9

func sumWeights(prompts []WeightedPrompt) float64 {
	var total float64
	for _, wp := range prompts {
		total += wp.Weight
	}
	return total
}

func TestNormalize_SumsToOne(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
	}{
		{
			name: "already normalized",
			candidates: []Candidate{
				{Text: "pop", Weight: 0.4},
				{Text: "synthesizer", Weight: 0.3},
				{Text: "drums", Weight: 0.2},
				{Text: "bass", Weight: 0.1},
			},
		},
		{
			name: "arbitrary positive weights",
			candidates: []Candidate{
				{Text: "jazz", Weight: 3.5},
				{Text: "piano", Weight: 1.25},
				{Text: "saxophone", Weight: 0.01},
			},
		},
		{
			name: "single component",
			candidates: []Candidate{
				{Text: "ambient", Weight: 42.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts, err := Normalize(tt.candidates)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, sumWeights(prompts), weightTolerance)
		})
	}
}

func TestNormalize_RescaleExample(t *testing.T) {
	prompts, err := Normalize([]Candidate{
		{Text: "pop", Weight: 2},
		{Text: "piano", Weight: 1},
		{Text: "drums", Weight: 1},
	})
	require.NoError(t, err)
	require.Len(t, prompts, 3)

	assert.Equal(t, "pop", prompts[0].Text)
	assert.InDelta(t, 0.5, prompts[0].Weight, weightTolerance)
	assert.Equal(t, "piano", prompts[1].Text)
	assert.InDelta(t, 0.25, prompts[1].Weight, weightTolerance)
	assert.Equal(t, "drums", prompts[2].Text)
	assert.InDelta(t, 0.25, prompts[2].Weight, weightTolerance)
}

func TestNormalize_UniformFallback(t *testing.T) {
	prompts, err := Normalize([]Candidate{
		{Text: "a", Weight: 0},
		{Text: "b", Weight: 0},
	})
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.InDelta(t, 0.5, prompts[0].Weight, weightTolerance)
	assert.InDelta(t, 0.5, prompts[1].Weight, weightTolerance)
}

func TestNormalize_LengthFilter(t *testing.T) {
	tooLong := strings.Repeat("x", 60)

	prompts, err := Normalize([]Candidate{
		{Text: tooLong, Weight: 5.0},
		{Text: "piano", Weight: 1.0},
	})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "piano", prompts[0].Text)
	assert.InDelta(t, 1.0, prompts[0].Weight, weightTolerance)
}

func TestNormalize_EmptyAfterFilter(t *testing.T) {
	_, err := Normalize([]Candidate{
		{Text: strings.Repeat("x", 60), Weight: 1.0},
	})
	assert.ErrorIs(t, err, ErrNoValidComponents)
}

func TestNormalize_EmptyInput(t *testing.T) {
	_, err := Normalize(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Normalize([]Candidate{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNormalize_Filtering(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		kept      bool
	}{
		{name: "missing text", candidate: Candidate{Weight: 1.0}, kept: false},
		{name: "non-string text", candidate: Candidate{Text: 12, Weight: 1.0}, kept: false},
		{name: "whitespace-only text", candidate: Candidate{Text: "   ", Weight: 1.0}, kept: false},
		{name: "missing weight", candidate: Candidate{Text: "piano"}, kept: false},
		{name: "non-numeric weight reads as zero", candidate: Candidate{Text: "piano", Weight: "loud"}, kept: true},
		{name: "numeric string weight", candidate: Candidate{Text: "piano", Weight: "0.5"}, kept: true},
		{name: "exactly 50 chars", candidate: Candidate{Text: strings.Repeat("y", 50), Weight: 1.0}, kept: true},
		{name: "51 chars", candidate: Candidate{Text: strings.Repeat("y", 51), Weight: 1.0}, kept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Anchor component keeps the list non-empty either way.
			prompts, err := Normalize([]Candidate{
				{Text: "anchor", Weight: 1.0},
				tt.candidate,
			})
			require.NoError(t, err)
			if tt.kept {
				assert.Len(t, prompts, 2)
			} else {
				assert.Len(t, prompts, 1)
			}
		})
	}
}

func TestNormalize_TrimsText(t *testing.T) {
	prompts, err := Normalize([]Candidate{
		{Text: "  neo soul  ", Weight: 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, "neo soul", prompts[0].Text)
}

func TestNormalize_NegativeWeightReadsAsZero(t *testing.T) {
	prompts, err := Normalize([]Candidate{
		{Text: "pop", Weight: -3.0},
		{Text: "piano", Weight: 1.0},
	})
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.InDelta(t, 0.0, prompts[0].Weight, weightTolerance)
	assert.InDelta(t, 1.0, prompts[1].Weight, weightTolerance)
}

func TestNormalize_StableOrder(t *testing.T) {
	prompts, err := Normalize([]Candidate{
		{Text: "drums", Weight: 0.1},
		{Text: "pop", Weight: 0.7},
		{Text: "bass", Weight: 0.2},
	})
	require.NoError(t, err)
	require.Len(t, prompts, 3)
	assert.Equal(t, "drums", prompts[0].Text)
	assert.Equal(t, "pop", prompts[1].Text)
	assert.Equal(t, "bass", prompts[2].Text)
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := Normalize([]Candidate{
		{Text: "pop", Weight: 2},
		{Text: "piano", Weight: 1},
		{Text: "drums", Weight: 1},
	})
	require.NoError(t, err)

	asCandidates := make([]Candidate, len(first))
	for i, wp := range first {
		asCandidates[i] = Candidate{Text: wp.Text, Weight: wp.Weight}
	}

	second, err := Normalize(asCandidates)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.InDelta(t, first[i].Weight, second[i].Weight, weightTolerance)
	}
}
