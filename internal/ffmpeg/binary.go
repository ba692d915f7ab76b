// Package ffmpeg wraps the ffmpeg and ffprobe binaries for media probing
// and rendition encoding.
package ffmpeg

import (
	"fmt"

	"github.com/vidforge/vidforge/internal/util"
)

// Environment variables consulted when no explicit binary path is configured.
const (
	envFFmpeg  = "VIDFORGE_FFMPEG_PATH"
	envFFprobe = "VIDFORGE_FFPROBE_PATH"
)

// Binaries holds resolved paths to the ffmpeg tool set.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// ResolveBinaries locates ffmpeg and ffprobe. Explicit configured paths win,
// then the VIDFORGE_FFMPEG_PATH/VIDFORGE_FFPROBE_PATH environment variables,
// then PATH lookup.
func ResolveBinaries(ffmpegPath, ffprobePath string) (*Binaries, error) {
	ffmpeg, err := util.FindBinary("ffmpeg", ffmpegPath, envFFmpeg)
	if err != nil {
		return nil, fmt.Errorf("resolving ffmpeg: %w", err)
	}
	ffprobe, err := util.FindBinary("ffprobe", ffprobePath, envFFprobe)
	if err != nil {
		return nil, fmt.Errorf("resolving ffprobe: %w", err)
	}
	return &Binaries{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}
