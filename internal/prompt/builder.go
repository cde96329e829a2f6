// Package prompt builds system prompts for the music breakdown analyzer.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harmonia-labs/lyria-api/internal/breakdown"
)

// AnalyzerPromptBuilder builds the system prompt for the breakdown analyzer
type AnalyzerPromptBuilder struct{}

// NewAnalyzerPromptBuilder creates a new analyzer prompt builder
func NewAnalyzerPromptBuilder() *AnalyzerPromptBuilder {
	return &AnalyzerPromptBuilder{}
}

// BuildPrompt builds the complete system prompt. When previous is non-nil
// the prompt includes the prior track context so the model can apply an
// edit instruction incrementally instead of starting over.
func (b *AnalyzerPromptBuilder) BuildPrompt(previous *breakdown.TrackContext) (string, error) {
	sections := []string{
		b.getSystemInstructions(),
		b.getParameterGuidance(),
		b.getExamples(),
	}

	if previous != nil {
		editSection, err := b.getEditContext(previous)
		if err != nil {
			return "", err
		}
		sections = append(sections, editSection)
	}

	sections = append(sections, b.getOutputFormatInstructions())

	return strings.Join(sections, "\n\n"), nil
}

// getSystemInstructions returns the main extraction rules
func (b *AnalyzerPromptBuilder) getSystemInstructions() string {
	return `You are a music production assistant. Extract the GENRE and determine appropriate INSTRUMENTS to create weighted components.

CRITICAL RULES:
1. ALWAYS identify the genre/style from the prompt
2. If instruments are mentioned, use those
3. If NO instruments are mentioned, INFER appropriate instruments for that genre based on music production knowledge
4. Each component must be a SINGLE word or short phrase (e.g., "pop", "synthesizer", "drums", "bass")
5. Do NOT include the full prompt text or explanatory phrases
6. Create 3-5 components (genre + 2-4 instruments)
7. Weights must sum to 1.0
8. Genre typically gets 30-50% weight, lead instruments get higher weights

EXTRACTION PROCESS:
1. Identify the GENRE (e.g., pop, jazz, kpop, classical, orchestral, hip hop, rock, etc.)
2. Check if instruments are EXPLICITLY mentioned:
   - If YES: Use those instruments
   - If NO: Infer 2-4 typical instruments for that genre
3. Assign weights: genre (30-50%), lead instruments (20-30% each), supporting instruments (10-20% each)

COMMON GENRE INSTRUMENTS (use when not specified):
- Pop: synthesizer, drums, bass, electric guitar
- Jazz: piano, drums, bass, saxophone
- Hip hop: drums, bass, synthesizer
- Rock: electric guitar, drums, bass
- Classical/Orchestral: strings, brass, woodwinds, percussion
- Kpop: synthesizer, electronic beats, bass
- Neo soul: piano, strings, bass, drums`
}

// getParameterGuidance returns rules for the generation parameters
func (b *AnalyzerPromptBuilder) getParameterGuidance() string {
	return fmt.Sprintf(`GENERATION PARAMETERS:
Alongside the components, choose generation parameters that match the described music:
- "bpm": tempo in beats per minute, integer between %d and %d. Ballads 60-90, mid-tempo 90-120, dance/electronic 120-150, fast genres 150-180.
- "guidance": how strictly generation follows the prompt, number between %.1f and %.1f. Use %.1f unless the user asks for something experimental (lower) or very literal (higher).
- "density": how busy the arrangement is, number between %.1f and %.1f. Sparse/ambient around 0.2-0.4, typical songs around 0.5, dense/layered around 0.7-0.9.`,
		breakdown.MinBPM, breakdown.MaxBPM,
		breakdown.MinGuidance, breakdown.MaxGuidance, breakdown.DefaultGuidance,
		breakdown.MinDensity, breakdown.MaxDensity)
}

// getExamples returns few-shot examples for the extraction
func (b *AnalyzerPromptBuilder) getExamples() string {
	return `EXAMPLES:

Input: "i want a catchy pop song"
Output: {
  "components": [
    {"text": "pop", "weight": 0.4},
    {"text": "synthesizer", "weight": 0.3},
    {"text": "drums", "weight": 0.2},
    {"text": "bass", "weight": 0.1}
  ],
  "parameters": {"bpm": 118, "guidance": 7.0, "density": 0.5}
}

Input: "i want to develop a catchy pop song that has trumpets leading"
Output: {
  "components": [
    {"text": "pop", "weight": 0.5},
    {"text": "trumpets", "weight": 0.3},
    {"text": "synthesizer", "weight": 0.15},
    {"text": "drums", "weight": 0.05}
  ],
  "parameters": {"bpm": 120, "guidance": 7.0, "density": 0.6}
}

Input: "A neo soul track with piano and strings"
Output: {
  "components": [
    {"text": "neo soul", "weight": 0.4},
    {"text": "piano", "weight": 0.3},
    {"text": "strings", "weight": 0.2},
    {"text": "bass", "weight": 0.1}
  ],
  "parameters": {"bpm": 85, "guidance": 7.0, "density": 0.4}
}

Input: "Jazz piano with drums and bass"
Output: {
  "components": [
    {"text": "jazz", "weight": 0.35},
    {"text": "piano", "weight": 0.3},
    {"text": "drums", "weight": 0.2},
    {"text": "bass", "weight": 0.15}
  ],
  "parameters": {"bpm": 110, "guidance": 7.0, "density": 0.5}
}

Input: "I want to develop a theme song for an assassin family. Key Instruments: Violins, cellos, and basses. Brass: Low brass like tuba and horns. Woodwinds: Flute, bassoon, and clarinet. Percussion: Timpani and triangle. Choir/Synthesizer: Vocal choir and synth elements."
Output: {
  "components": [
    {"text": "dark orchestral", "weight": 0.4},
    {"text": "strings", "weight": 0.25},
    {"text": "brass", "weight": 0.15},
    {"text": "woodwinds", "weight": 0.1},
    {"text": "percussion", "weight": 0.1}
  ],
  "parameters": {"bpm": 90, "guidance": 7.5, "density": 0.7}
}

Input: "a good pop song with the piano having the most weight"
Output: {
  "components": [
    {"text": "pop", "weight": 0.35},
    {"text": "piano", "weight": 0.4},
    {"text": "drums", "weight": 0.15},
    {"text": "bass", "weight": 0.1}
  ],
  "parameters": {"bpm": 115, "guidance": 7.0, "density": 0.5}
}`
}

// getEditContext renders the previous track context so the model treats
// the instruction as an incremental change.
func (b *AnalyzerPromptBuilder) getEditContext(previous *breakdown.TrackContext) (string, error) {
	contextJSON, err := json.MarshalIndent(previous, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode previous track context: %w", err)
	}

	return `EDIT MODE:
The user is modifying an existing track rather than describing a new one. The current track breakdown is:

` + string(contextJSON) + `

Apply the user's instruction as an INCREMENTAL change:
- Keep components the instruction does not mention, at similar weights
- Add, remove, or reweight only what the instruction asks for
- Keep parameters the instruction does not mention unchanged
- The output must still be the complete breakdown (all components and all parameters), not a diff`, nil
}

// getOutputFormatInstructions returns instructions for the output format
func (b *AnalyzerPromptBuilder) getOutputFormatInstructions() string {
	return `OUTPUT FORMAT (JSON only):
{
  "components": [
    {"text": "genre", "weight": 0.4},
    {"text": "instrument1", "weight": 0.3},
    {"text": "instrument2", "weight": 0.2},
    {"text": "instrument3", "weight": 0.1}
  ],
  "parameters": {"bpm": 120, "guidance": 7.0, "density": 0.5}
}

Now extract the genre and determine appropriate instruments:`
}
