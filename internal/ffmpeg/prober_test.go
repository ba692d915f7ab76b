package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProbeScript writes an executable shell script that emits the given
// JSON, standing in for ffprobe.
func fakeProbeScript(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake not available on windows")
	}

	path := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\ncat <<'EOF'\n" + output + "\nEOF\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestProbeParsesOutput(t *testing.T) {
	script := fakeProbeScript(t, `{
  "format": {"duration": "42.383000", "bit_rate": "8012345"},
  "streams": [
    {"codec_type": "audio"},
    {"codec_type": "video", "width": 1920, "height": 1080}
  ]
}`)

	p := NewProber(script, 10*time.Second, nil)
	info, err := p.Probe(context.Background(), "/tmp/in.mov")
	require.NoError(t, err)

	assert.InDelta(t, 42.383, info.DurationSeconds, 0.001)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, 8012345, info.BitrateBps)
}

func TestProbeNoVideoStream(t *testing.T) {
	script := fakeProbeScript(t, `{
  "format": {"duration": "10.0"},
  "streams": [{"codec_type": "audio"}]
}`)

	p := NewProber(script, 10*time.Second, nil)
	_, err := p.Probe(context.Background(), "/tmp/audio.mp3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoVideoStream)
}

func TestProbeInvalidJSON(t *testing.T) {
	script := fakeProbeScript(t, "not json")

	p := NewProber(script, 10*time.Second, nil)
	_, err := p.Probe(context.Background(), "/tmp/in.mov")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing ffprobe output")
}

func TestProbeMissingBinary(t *testing.T) {
	p := NewProber("/nonexistent/ffprobe", 10*time.Second, nil)
	_, err := p.Probe(context.Background(), "/tmp/in.mov")
	assert.Error(t, err)
}
