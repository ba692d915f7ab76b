package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// ErrNoVideoStream is returned when the probed file has no decodable video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// MediaInfo describes the probed properties of a media file.
type MediaInfo struct {
	// DurationSeconds is the container duration.
	DurationSeconds float64
	// Width and Height are the dimensions of the first video stream.
	Width  int
	Height int
	// BitrateBps is the overall bitrate in bits per second, 0 if unknown.
	BitrateBps int
}

// Prober extracts media metadata using ffprobe.
type Prober struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewProber creates a Prober using the given ffprobe binary path.
func NewProber(binary string, timeout time.Duration, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Prober{binary: binary, timeout: timeout, logger: logger}
}

// probeOutput mirrors the subset of ffprobe JSON output we consume.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe runs ffprobe against the file at path and returns its media info.
func (p *Prober) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	p.logger.Debug("probing media", slog.String("path", path))

	out, err := exec.CommandContext(ctx, p.binary, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe failed: %s: %w", tail(string(exitErr.Stderr)), err)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	info := &MediaInfo{}
	if probed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			info.DurationSeconds = d
		}
	}
	if probed.Format.BitRate != "" {
		if b, err := strconv.Atoi(probed.Format.BitRate); err == nil {
			info.BitrateBps = b
		}
	}

	for _, s := range probed.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}
	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoVideoStream, path)
	}

	return info, nil
}
