package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// EncodeParams describes a single rendition encode.
type EncodeParams struct {
	// Width and Height are the output dimensions.
	Width  int
	Height int
	// VideoBitrateKbps is the target video bitrate.
	VideoBitrateKbps int
	// AudioBitrateKbps is the AAC audio bitrate.
	AudioBitrateKbps int
	// Preset is the x264 encoder preset, e.g. "medium".
	Preset string
}

// Encoder produces MP4 renditions with ffmpeg.
type Encoder struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEncoder creates an Encoder using the given ffmpeg binary path.
func NewEncoder(binary string, timeout time.Duration, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Hour
	}
	return &Encoder{binary: binary, timeout: timeout, logger: logger}
}

// BuildArgs returns the ffmpeg argument list for one rendition encode.
// Exposed for argument construction tests.
func BuildArgs(inputPath, outputPath string, p EncodeParams) []string {
	preset := p.Preset
	if preset == "" {
		preset = "medium"
	}
	audioKbps := p.AudioBitrateKbps
	if audioKbps <= 0 {
		audioKbps = 128
	}

	return []string{
		"-hide_banner",
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=%d:%d", p.Width, p.Height),
		"-c:v", "libx264",
		"-b:v", fmt.Sprintf("%dk", p.VideoBitrateKbps),
		"-preset", preset,
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", audioKbps),
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-nostats",
		outputPath,
	}
}

// Encode transcodes inputPath to outputPath with the given parameters.
// On failure the tail of ffmpeg's stderr output is included in the error.
func (e *Encoder) Encode(ctx context.Context, inputPath, outputPath string, p EncodeParams) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := BuildArgs(inputPath, outputPath, p)
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}

	e.logger.Debug("starting encode",
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.Int("width", p.Width),
		slog.Int("height", p.Height),
		slog.Int("bitrate_kbps", p.VideoBitrateKbps),
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	// Consume -progress key=value output; surfaced at debug level only.
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "out_time=") {
			e.logger.Debug("encode progress",
				slog.String("output", outputPath),
				slog.String("out_time", strings.TrimPrefix(line, "out_time=")),
			)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("encode interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg exited with error: %s: %w", tail(stderr.String()), err)
	}

	return nil
}

// tail returns the last few lines of ffmpeg output, which carry the actual
// failure reason.
func tail(s string) string {
	const maxLines = 5
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, " | ")
}
