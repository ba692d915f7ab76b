// Package service implements application-level workflows above the
// repositories: creating videos, enqueueing transcode jobs, and projecting
// transcoding status for the API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/observability"
	"github.com/vidforge/vidforge/internal/repository"
)

// Service-level sentinel errors.
var (
	// ErrVideoNotFound is returned when the requested video does not exist.
	ErrVideoNotFound = errors.New("video not found")
	// ErrNoSource is returned when a transcode is requested for a video
	// without a source key.
	ErrNoSource = errors.New("video has no source to transcode")
)

// VariantStatus is one rendition in a status projection.
type VariantStatus struct {
	Quality     string `json:"quality"`
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	BitrateKbps int    `json:"bitrate_kbps"`
	Size        int64  `json:"size"`
}

// StatusProjection is the API-facing view of a video's transcoding state.
type StatusProjection struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Status          models.TranscodingStatus `json:"status"`
	Progress        int                      `json:"progress"`
	Error           string                   `json:"error,omitempty"`
	ManifestURL     string                   `json:"manifest_url,omitempty"`
	DurationSeconds int                      `json:"duration_seconds"`
	Variants        []VariantStatus          `json:"quality_variants"`
}

// VideoService coordinates video records with the job queue.
type VideoService struct {
	videos      repository.VideoRepository
	variants    repository.QualityVariantRepository
	jobs        repository.JobRepository
	maxAttempts int
	logger      *slog.Logger
}

// NewVideoService creates a VideoService.
func NewVideoService(
	videos repository.VideoRepository,
	variants repository.QualityVariantRepository,
	jobs repository.JobRepository,
	maxAttempts int,
	logger *slog.Logger,
) *VideoService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &VideoService{
		videos:      videos,
		variants:    variants,
		jobs:        jobs,
		maxAttempts: maxAttempts,
		logger:      observability.WithComponent(logger, "video-service"),
	}
}

// Create persists a new video and, when it has a source, enqueues its
// transcode job.
func (s *VideoService) Create(ctx context.Context, video *models.Video) error {
	if err := s.videos.Create(ctx, video); err != nil {
		return err
	}
	if video.SourceKey == "" {
		return nil
	}
	return s.enqueue(ctx, video)
}

// Get returns a video by ID, or ErrVideoNotFound.
func (s *VideoService) Get(ctx context.Context, id models.ULID) (*models.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	return video, nil
}

// ListByOwner returns all videos for an owner, newest first.
func (s *VideoService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	return s.videos.GetByOwner(ctx, ownerID)
}

// Status assembles the transcoding status projection for a video.
func (s *VideoService) Status(ctx context.Context, id models.ULID) (*StatusProjection, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	variants, err := s.variants.GetByVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	projection := &StatusProjection{
		ID:              video.ID.String(),
		Title:           video.Title,
		Status:          video.TranscodingStatus,
		Progress:        video.TranscodingProgress,
		Error:           video.TranscodingError,
		ManifestURL:     video.ManifestURL,
		DurationSeconds: video.DurationSeconds,
		Variants:        make([]VariantStatus, 0, len(variants)),
	}
	for _, v := range variants {
		projection.Variants = append(projection.Variants, VariantStatus{
			Quality:     v.Quality,
			URL:         v.URL,
			Width:       v.Width,
			Height:      v.Height,
			BitrateKbps: v.BitrateKbps,
			Size:        v.Size,
		})
	}
	return projection, nil
}

// Retrigger resets a video to pending and enqueues a fresh transcode job.
// Existing variants are kept; a successful rerun overwrites them in place.
func (s *VideoService) Retrigger(ctx context.Context, id models.ULID) (*models.Job, error) {
	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.SourceKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, id)
	}

	if err := s.videos.SetPending(ctx, id); err != nil {
		return nil, err
	}
	video.TranscodingStatus = models.TranscodingStatusPending

	if err := s.enqueue(ctx, video); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindDuplicatePending(ctx, models.JobTypeVideoTranscode, id)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// enqueue creates a transcode job unless one is already queued or running
// for the video.
func (s *VideoService) enqueue(ctx context.Context, video *models.Video) error {
	existing, err := s.jobs.FindDuplicatePending(ctx, models.JobTypeVideoTranscode, video.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Debug("transcode job already queued",
			slog.String("video_id", video.ID.String()),
			slog.String("job_id", existing.ID.String()),
		)
		return nil
	}

	job := models.NewTranscodeJob(video, s.maxAttempts)
	if err := s.jobs.Create(ctx, job); err != nil {
		return fmt.Errorf("enqueueing transcode job: %w", err)
	}

	s.logger.Info("transcode job enqueued",
		slog.String("video_id", video.ID.String()),
		slog.String("job_id", job.ID.String()),
	)
	return nil
}
