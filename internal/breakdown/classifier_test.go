package breakdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	detector := NewKeywordDetector()

	tests := []struct {
		name        string
		instruction string
		hasPrevious bool
		want        bool
	}{
		{name: "edit keyword with context", instruction: "add more piano", hasPrevious: true, want: true},
		{name: "fresh description with context", instruction: "a totally new jazz track", hasPrevious: true, want: false},
		{name: "edit keyword without context", instruction: "add more piano", hasPrevious: false, want: false},
		{name: "tempo adjustment", instruction: "make it faster", hasPrevious: true, want: true},
		{name: "volume adjustment", instruction: "the drums should be quieter", hasPrevious: true, want: true},
		{name: "case insensitive", instruction: "REMOVE the bass", hasPrevious: true, want: true},
		{name: "substring match without word boundary", instruction: "an addendum to my notes", hasPrevious: true, want: true},
		{name: "empty instruction", instruction: "", hasPrevious: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(detector, tt.instruction, tt.hasPrevious)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeywordDetector_LooksLikeEdit(t *testing.T) {
	detector := NewKeywordDetector()

	assert.True(t, detector.LooksLikeEdit("turn it up a notch"))
	assert.True(t, detector.LooksLikeEdit("Make the synths warmer"))
	assert.False(t, detector.LooksLikeEdit("a cinematic orchestral theme"))
}

// stubDetector verifies the reconciliation path only depends on the
// EditDetector interface, not on the keyword implementation.
type stubDetector struct {
	result bool
}

func (d *stubDetector) LooksLikeEdit(string) bool { return d.result }

func TestClassify_PluggableDetector(t *testing.T) {
	always := &stubDetector{result: true}
	never := &stubDetector{result: false}

	assert.True(t, Classify(always, "anything", true))
	assert.False(t, Classify(always, "anything", false))
	assert.False(t, Classify(never, "add more piano", true))
}
