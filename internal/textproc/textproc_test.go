package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScanned(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty passthrough", in: "", want: ""},
		{name: "collapses whitespace", in: "  pay   the\n\tbill  ", want: "pay the bill"},
		{name: "splits glued camel case", in: "NoticeDate follows", want: "Notice Date follows"},
		{name: "splits letter digit runs", in: "room14B opens", want: "room 14 B opens"},
		{name: "regularizes punctuation spacing", in: "pay now ,then call .", want: "pay now, then call."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeScanned(tt.in))
		})
	}
}

func TestSegmentShortTextIsSinglePiece(t *testing.T) {
	got := Segment("One short sentence.", 500)
	require.Len(t, got, 1)
	assert.Equal(t, "One short sentence.", got[0])
}

func TestSegmentPrefersSentenceBoundaries(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("This sentence fills roughly forty characters. ", 20))
	got := Segment(text, 100)

	require.Greater(t, len(got), 1)
	for _, seg := range got {
		assert.LessOrEqual(t, len(seg), 100)
		assert.True(t, strings.HasSuffix(seg, "."), "segment %q should end on a sentence boundary", seg)
	}
}

func TestSegmentFallsBackToClauses(t *testing.T) {
	// One 300-character sentence with commas and no sentence end until the
	// very last character.
	clause := strings.Repeat("a", 40)
	text := clause + ", " + clause + ", " + clause + ", " + clause + ", " + clause + ", " + clause + "."
	got := Segment(text, 100)

	require.Greater(t, len(got), 1)
	for _, seg := range got {
		assert.LessOrEqual(t, len(seg), 100)
	}
}

func TestSegmentZeroMaxUsesDefault(t *testing.T) {
	got := Segment("short", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "short", got[0])
}
