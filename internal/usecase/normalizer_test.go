package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatExtractedText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `"Artist" - Album [Deluxe], 2020`, want: "Artist - Album"},
		{in: "Artist – Album Remastered", want: "Artist – Album"},
		{in: "A-ha – Hunting High And Low", want: "A - ha"},
		{in: "Plain Title", want: "Plain Title"},
		{in: "  padded  ", want: "padded"},
		{in: "Trailing -", want: "Trailing -"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExtractedText(tt.in))
		})
	}
}

func TestFormatExtractedTextIsIdempotent(t *testing.T) {
	inputs := []string{
		`"Artist" - Album [Deluxe], 2020`,
		"Artist – Album Remastered",
		"Various - Now That's What I Call Music! 42",
		"No dash at all",
		"Trailing -",
		"",
	}
	for _, in := range inputs {
		once := FormatExtractedText(in)
		assert.Equal(t, once, FormatExtractedText(once), "input %q", in)
	}
}

func TestTrimTitleSuffix(t *testing.T) {
	assert.Equal(t, "Artist - Album", TrimTitleSuffix("Artist - Album | Discogs", " | Discogs"))
	assert.Equal(t, "Artist - Album", TrimTitleSuffix("Artist - Album | Discogs | Marketplace", " | Discogs"))
	assert.Equal(t, "No suffix here", TrimTitleSuffix("No suffix here", " | Discogs"))
	assert.Equal(t, "Untouched | Discogs", TrimTitleSuffix("Untouched | Discogs", ""))
}
