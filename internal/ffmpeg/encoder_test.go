package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("/tmp/in.mov", "/tmp/720p.mp4", EncodeParams{
		Width:            1280,
		Height:           720,
		VideoBitrateKbps: 2500,
		AudioBitrateKbps: 128,
		Preset:           "medium",
	})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i /tmp/in.mov")
	assert.Contains(t, joined, "-vf scale=1280:720")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-b:v 2500k")
	assert.Contains(t, joined, "-preset medium")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-b:a 128k")
	assert.Contains(t, joined, "-movflags +faststart")
	assert.Equal(t, "/tmp/720p.mp4", args[len(args)-1])

	// -y so reruns overwrite partial output.
	assert.Contains(t, args, "-y")
}

func TestBuildArgsDefaults(t *testing.T) {
	args := BuildArgs("in", "out", EncodeParams{Width: 640, Height: 360, VideoBitrateKbps: 800})

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-preset medium")
	assert.Contains(t, joined, "-b:a 128k")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "one", tail("one\n"))
	assert.Equal(t, "a | b", tail("a\nb"))

	long := "1\n2\n3\n4\n5\n6\n7"
	assert.Equal(t, "3 | 4 | 5 | 6 | 7", tail(long))
}
