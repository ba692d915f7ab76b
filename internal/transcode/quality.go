// Package transcode implements the video transcoding pipeline: rendition
// planning, encoding, HLS master playlist generation, and state transitions.
package transcode

// Descriptor describes one output rendition.
type Descriptor struct {
	// Name is the rendition label, e.g. "720p".
	Name string
	// Width and Height are the output dimensions.
	Width  int
	Height int
	// BitrateKbps is the target video bitrate in kilobits per second.
	BitrateKbps int
}

// DefaultLadder is the built-in rendition ladder, ascending by height.
var DefaultLadder = []Descriptor{
	{Name: "360p", Width: 640, Height: 360, BitrateKbps: 800},
	{Name: "720p", Width: 1280, Height: 720, BitrateKbps: 2500},
	{Name: "1080p", Width: 1920, Height: 1080, BitrateKbps: 5000},
}

// SelectRenditions returns the subset of the ladder whose height does not
// exceed the source height, ordered ascending by height. The input slice is
// never modified. An empty result means the source is smaller than the
// lowest rung.
func SelectRenditions(ladder []Descriptor, sourceHeight int) []Descriptor {
	selected := make([]Descriptor, 0, len(ladder))
	for _, d := range ladder {
		if d.Height <= sourceHeight {
			selected = append(selected, d)
		}
	}

	// Ladders are declared ascending; enforce the order regardless.
	for i := 1; i < len(selected); i++ {
		for j := i; j > 0 && selected[j].Height < selected[j-1].Height; j-- {
			selected[j], selected[j-1] = selected[j-1], selected[j]
		}
	}
	return selected
}
