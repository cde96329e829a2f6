package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/lyria-api/internal/breakdown"
)

func TestBuildPrompt_FreshTrack(t *testing.T) {
	builder := NewAnalyzerPromptBuilder()

	result, err := builder.BuildPrompt(nil)
	require.NoError(t, err)
	require.NotEmpty(t, result)

	assert.Contains(t, result, "music production assistant")
	assert.Contains(t, result, "Weights must sum to 1.0")
	assert.Contains(t, result, "GENERATION PARAMETERS")
	assert.Contains(t, result, "OUTPUT FORMAT (JSON only)")
	assert.NotContains(t, result, "EDIT MODE")
}

func TestBuildPrompt_ParameterBoundsRendered(t *testing.T) {
	builder := NewAnalyzerPromptBuilder()

	result, err := builder.BuildPrompt(nil)
	require.NoError(t, err)

	assert.Contains(t, result, "between 60 and 180")
	assert.Contains(t, result, "between 1.0 and 10.0")
	assert.Contains(t, result, "between 0.0 and 1.0")
}

func TestBuildPrompt_EditModeIncludesContext(t *testing.T) {
	builder := NewAnalyzerPromptBuilder()
	previous := &breakdown.TrackContext{
		WeightedPrompts: []breakdown.WeightedPrompt{
			{Text: "jazz", Weight: 0.6},
			{Text: "piano", Weight: 0.4},
		},
		Params: breakdown.Params{BPM: 110, Guidance: 7.0, Density: 0.5},
	}

	result, err := builder.BuildPrompt(previous)
	require.NoError(t, err)

	assert.Contains(t, result, "EDIT MODE")
	assert.Contains(t, result, `"jazz"`)
	assert.Contains(t, result, `"piano"`)
	assert.Contains(t, result, `"bpm": 110`)

	// edit context must come before the output format instructions
	editIdx := strings.Index(result, "EDIT MODE")
	outputIdx := strings.Index(result, "OUTPUT FORMAT")
	assert.Less(t, editIdx, outputIdx)
}

func TestBuildPrompt_SectionsJoinedByBlankLines(t *testing.T) {
	builder := NewAnalyzerPromptBuilder()

	result, err := builder.BuildPrompt(nil)
	require.NoError(t, err)
	assert.Contains(t, result, "\n\n")
}
