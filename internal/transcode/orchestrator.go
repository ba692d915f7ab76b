package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/vidforge/vidforge/internal/ffmpeg"
	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/observability"
	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/internal/storage"
)

// Prober extracts media metadata from a local file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

// Encoder produces one rendition from a local source file.
type Encoder interface {
	Encode(ctx context.Context, inputPath, outputPath string, p ffmpeg.EncodeParams) error
}

// Notifier receives terminal pipeline events.
type Notifier interface {
	TranscodeCompleted(ctx context.Context, video *models.Video) error
	TranscodeFailed(ctx context.Context, video *models.Video, cause error) error
}

// Request identifies the work a transcode job carries.
type Request struct {
	VideoID   models.ULID
	SourceKey string
	OwnerID   string
}

// Options tune the pipeline.
type Options struct {
	// Ladder is the candidate rendition set. Empty means DefaultLadder.
	Ladder []Descriptor
	// AudioBitrateKbps is applied to every rendition; 0 means 128.
	AudioBitrateKbps int
	// Preset is the x264 preset; empty means "medium".
	Preset string
	// WorkspaceRoot is where scratch directories are created; empty means
	// the system temp directory.
	WorkspaceRoot string
}

// Orchestrator runs the full transcode pipeline for one video: download,
// probe, plan, encode each rendition, upload, write the master playlist, and
// record the terminal state.
type Orchestrator struct {
	videos   repository.VideoRepository
	variants repository.QualityVariantRepository
	store    storage.ObjectStore
	prober   Prober
	encoder  Encoder
	notifier Notifier
	opts     Options
	logger   *slog.Logger
}

// NewOrchestrator wires the pipeline dependencies.
func NewOrchestrator(
	videos repository.VideoRepository,
	variants repository.QualityVariantRepository,
	store storage.ObjectStore,
	prober Prober,
	encoder Encoder,
	notifier Notifier,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Ladder) == 0 {
		opts.Ladder = DefaultLadder
	}
	return &Orchestrator{
		videos:   videos,
		variants: variants,
		store:    store,
		prober:   prober,
		encoder:  encoder,
		notifier: notifier,
		opts:     opts,
		logger:   observability.WithComponent(logger, "transcode"),
	}
}

// encodePhasePercent is how much of the progress bar the per-rendition
// encode loop occupies; the remainder is granted when the manifest lands.
const encodePhasePercent = 80

// Run executes the pipeline for one request. Any returned error has already
// been recorded on the video (status failed + message) except when the video
// itself is missing. The caller decides retry semantics.
func (o *Orchestrator) Run(ctx context.Context, req Request) error {
	log := observability.WithVideoID(o.logger, req.VideoID.String())

	video, err := o.videos.GetByID(ctx, req.VideoID)
	if err != nil {
		return fmt.Errorf("loading video: %w", err)
	}
	if video == nil {
		return fmt.Errorf("%w: %s", ErrVideoNotFound, req.VideoID)
	}

	if err := o.videos.SetProcessing(ctx, video.ID); err != nil {
		return fmt.Errorf("marking video processing: %w", err)
	}
	video.TranscodingStatus = models.TranscodingStatusProcessing
	video.TranscodingProgress = 0

	ws, err := NewWorkspace(o.opts.WorkspaceRoot, video.ID.String(), log)
	if err != nil {
		return o.fail(ctx, log, video, err)
	}
	defer ws.Remove()

	var runErr error
	done := observability.TimedOperationWithError(ctx, log, "transcode", &runErr)
	defer done()

	runErr = o.run(ctx, log, video, req, ws)
	if runErr != nil {
		return o.fail(ctx, log, video, runErr)
	}

	if err := o.notifier.TranscodeCompleted(ctx, video); err != nil {
		log.Warn("completion notification failed", slog.String("error", err.Error()))
	}
	return nil
}

// run performs the fallible middle of the pipeline; Run handles terminal
// bookkeeping around it.
func (o *Orchestrator) run(ctx context.Context, log *slog.Logger, video *models.Video, req Request, ws *Workspace) error {
	sourceKey := req.SourceKey
	if sourceKey == "" {
		sourceKey = video.SourceKey
	}

	if err := o.store.Download(ctx, sourceKey, ws.SourcePath()); err != nil {
		return &StorageError{Op: "download", Key: sourceKey, Err: err}
	}

	info, err := o.prober.Probe(ctx, ws.SourcePath())
	if err != nil {
		return &ProbeError{Err: err}
	}

	durationSecs := int(math.Round(info.DurationSeconds))
	if err := o.videos.SetDuration(ctx, video.ID, durationSecs); err != nil {
		return fmt.Errorf("persisting duration: %w", err)
	}
	video.DurationSeconds = durationSecs

	plan := SelectRenditions(o.opts.Ladder, info.Height)
	if len(plan) == 0 {
		return fmt.Errorf("%w: source height %d below lowest rung", ErrEmptyPlan, info.Height)
	}

	log.Info("rendition plan",
		slog.Int("source_width", info.Width),
		slog.Int("source_height", info.Height),
		slog.Int("renditions", len(plan)),
	)

	entries := make([]ManifestEntry, 0, len(plan))
	for i, desc := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("transcode interrupted: %w", err)
		}

		if err := o.encodeRendition(ctx, video, ws, desc); err != nil {
			return err
		}
		entries = append(entries, ManifestEntryFor(desc))

		progress := int(math.Round(float64(i+1) / float64(len(plan)) * encodePhasePercent))
		if err := o.videos.SetProgress(ctx, video.ID, progress); err != nil {
			return fmt.Errorf("updating progress: %w", err)
		}
		video.TranscodingProgress = progress
	}

	manifestKey := storage.ManifestKey(video.OwnerID, video.ID.String())
	if err := os.WriteFile(ws.ManifestPath(), []byte(BuildManifest(entries)), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := o.store.Upload(ctx, ws.ManifestPath(), manifestKey, "application/vnd.apple.mpegurl"); err != nil {
		return &StorageError{Op: "upload", Key: manifestKey, Err: err}
	}

	manifestURL := o.store.URL(manifestKey)
	if err := o.videos.SetCompleted(ctx, video.ID, manifestURL); err != nil {
		return fmt.Errorf("marking video completed: %w", err)
	}
	video.TranscodingStatus = models.TranscodingStatusCompleted
	video.TranscodingProgress = 100
	video.ManifestURL = manifestURL

	log.Info("transcode completed",
		slog.Int("renditions", len(plan)),
		slog.String("manifest_key", manifestKey),
	)
	return nil
}

// encodeRendition encodes, uploads, and records one rendition.
func (o *Orchestrator) encodeRendition(ctx context.Context, video *models.Video, ws *Workspace, desc Descriptor) error {
	outPath := ws.RenditionPath(desc.Name)

	err := o.encoder.Encode(ctx, ws.SourcePath(), outPath, ffmpeg.EncodeParams{
		Width:            desc.Width,
		Height:           desc.Height,
		VideoBitrateKbps: desc.BitrateKbps,
		AudioBitrateKbps: o.opts.AudioBitrateKbps,
		Preset:           o.opts.Preset,
	})
	if err != nil {
		return &EncodeError{Quality: desc.Name, Err: err}
	}

	key := storage.RenditionKey(video.OwnerID, video.ID.String(), desc.Name)
	if err := o.store.Upload(ctx, outPath, key, "video/mp4"); err != nil {
		return &StorageError{Op: "upload", Key: key, Err: err}
	}

	var size int64
	if fi, err := os.Stat(outPath); err == nil {
		size = fi.Size()
	}

	variant := &models.QualityVariant{
		VideoID:     video.ID,
		Quality:     desc.Name,
		URL:         o.store.URL(key),
		StorageKey:  key,
		Size:        size,
		Width:       desc.Width,
		Height:      desc.Height,
		BitrateKbps: desc.BitrateKbps,
	}
	if err := o.variants.Upsert(ctx, variant); err != nil {
		return fmt.Errorf("recording %s variant: %w", desc.Name, err)
	}

	return nil
}

// fail records the failure on the video, emits the failure notification, and
// returns the original error for the queue layer. Progress and any variants
// written so far are deliberately left in place.
func (o *Orchestrator) fail(ctx context.Context, log *slog.Logger, video *models.Video, cause error) error {
	log.Error("transcode failed", slog.String("error", cause.Error()))

	if err := o.videos.SetFailed(ctx, video.ID, cause.Error()); err != nil {
		log.Error("failed to record failure status", slog.String("error", err.Error()))
	}
	video.TranscodingStatus = models.TranscodingStatusFailed
	video.TranscodingError = cause.Error()

	if err := o.notifier.TranscodeFailed(ctx, video, cause); err != nil {
		log.Warn("failure notification failed", slog.String("error", err.Error()))
	}
	return cause
}
