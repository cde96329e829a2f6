package llm

import "github.com/harmonia-labs/lyria-api/internal/breakdown"

// GetBreakdownSchema returns the JSON schema for the analyzer output:
// a list of weighted components plus generation parameters.
// Note: OpenAI strict mode requires additionalProperties: false and
// every property listed in 'required'.
func GetBreakdownSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"components": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":   map[string]any{"type": "string"},
						"weight": map[string]any{"type": "number", "minimum": 0},
					},
					"required":             []string{"text", "weight"},
					"additionalProperties": false,
				},
			},
			"parameters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"bpm": map[string]any{
						"type":    "integer",
						"minimum": breakdown.MinBPM,
						"maximum": breakdown.MaxBPM,
					},
					"guidance": map[string]any{
						"type":    "number",
						"minimum": breakdown.MinGuidance,
						"maximum": breakdown.MaxGuidance,
					},
					"density": map[string]any{
						"type":    "number",
						"minimum": breakdown.MinDensity,
						"maximum": breakdown.MaxDensity,
					},
				},
				"required":             []string{"bpm", "guidance", "density"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"components", "parameters"},
		"additionalProperties": false,
	}
}
