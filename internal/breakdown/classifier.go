package breakdown

import "strings"

// EditDetector decides whether an instruction reads like an
// incremental change to an existing track rather than a fresh request.
// It is an interface so the keyword heuristic can be replaced by a
// better classifier without touching the reconciliation logic.
type EditDetector interface {
	LooksLikeEdit(instruction string) bool
}

// editKeywords is the vocabulary that signals an incremental change.
// Matching is substring containment without word boundaries, so
// "addendum" matches "add" - a known imprecision of the heuristic.
var editKeywords = []string{
	"add", "remove", "more", "less",
	"increase", "decrease", "change",
	"make it", "make the", "turn it", "adjust",
	"faster", "slower", "quieter", "louder",
}

// KeywordDetector is the default EditDetector.
type KeywordDetector struct {
	keywords []string
}

// NewKeywordDetector returns a detector using the default edit vocabulary.
func NewKeywordDetector() *KeywordDetector {
	return &KeywordDetector{keywords: editKeywords}
}

// LooksLikeEdit reports whether any edit keyword occurs in the
// instruction, case-insensitively.
func (d *KeywordDetector) LooksLikeEdit(instruction string) bool {
	lowered := strings.ToLower(instruction)
	for _, kw := range d.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Classify decides whether the instruction is an edit of a previous
// result. Presence of previous context alone is not enough signal - a
// user may start an unrelated track while an old result still sits in
// session state - so without an edit keyword the request is fresh.
// Without previous context every instruction is fresh.
func Classify(detector EditDetector, instruction string, hasPrevious bool) bool {
	if !hasPrevious {
		return false
	}
	return detector.LooksLikeEdit(instruction)
}
