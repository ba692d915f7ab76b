package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRenditions(t *testing.T) {
	tests := []struct {
		name         string
		sourceHeight int
		want         []string
	}{
		{name: "1080p source gets full ladder", sourceHeight: 1080, want: []string{"360p", "720p", "1080p"}},
		{name: "4K source never upscales", sourceHeight: 2160, want: []string{"360p", "720p", "1080p"}},
		{name: "720p source drops 1080p", sourceHeight: 720, want: []string{"360p", "720p"}},
		{name: "719p source drops 720p", sourceHeight: 719, want: []string{"360p"}},
		{name: "360p source keeps lowest rung", sourceHeight: 360, want: []string{"360p"}},
		{name: "240p source selects nothing", sourceHeight: 240, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRenditions(DefaultLadder, tt.sourceHeight)

			names := make([]string, 0, len(got))
			for _, d := range got {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSelectRenditionsAscendingOrder(t *testing.T) {
	// Ladder declared out of order must still come back ascending.
	ladder := []Descriptor{
		{Name: "1080p", Width: 1920, Height: 1080, BitrateKbps: 5000},
		{Name: "360p", Width: 640, Height: 360, BitrateKbps: 800},
		{Name: "720p", Width: 1280, Height: 720, BitrateKbps: 2500},
	}

	got := SelectRenditions(ladder, 1080)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Height, got[i].Height)
	}
}

func TestSelectRenditionsDoesNotMutateInput(t *testing.T) {
	ladder := []Descriptor{
		{Name: "1080p", Width: 1920, Height: 1080, BitrateKbps: 5000},
		{Name: "360p", Width: 640, Height: 360, BitrateKbps: 800},
	}
	original := make([]Descriptor, len(ladder))
	copy(original, ladder)

	_ = SelectRenditions(ladder, 2160)

	assert.Equal(t, original, ladder)
}
