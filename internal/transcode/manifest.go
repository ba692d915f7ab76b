package transcode

import (
	"fmt"
	"strings"
)

// ManifestEntry is one variant stream referenced by the master playlist.
type ManifestEntry struct {
	// BandwidthBps is the peak bandwidth in bits per second.
	BandwidthBps int
	// Width and Height are the stream dimensions.
	Width  int
	Height int
	// Filename is the playlist-relative media filename, e.g. "720p.mp4".
	Filename string
}

// ManifestEntryFor builds the playlist entry for a rendition descriptor.
func ManifestEntryFor(d Descriptor) ManifestEntry {
	return ManifestEntry{
		BandwidthBps: d.BitrateKbps * 1000,
		Width:        d.Width,
		Height:       d.Height,
		Filename:     d.Name + ".mp4",
	}
}

// BuildManifest renders an HLS master playlist for the given entries, in
// order. The output carries one EXT-X-STREAM-INF/filename pair per entry.
func BuildManifest(entries []ManifestEntry) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n\n")

	for _, e := range entries {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\n", e.BandwidthBps, e.Width, e.Height)
		b.WriteString(e.Filename)
		b.WriteString("\n\n")
	}

	return b.String()
}
