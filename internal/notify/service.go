package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/observability"
	"github.com/vidforge/vidforge/internal/repository"
)

// Service persists notifications and fans them out to live subscribers.
// Terminal transcode events are deduplicated per (video, outcome): a
// redelivered job never notifies the user twice for the same result.
type Service struct {
	repo     repository.NotificationRepository
	registry *Registry
	logger   *slog.Logger
}

// NewService creates a notification Service.
func NewService(repo repository.NotificationRepository, registry *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		repo:     repo,
		registry: registry,
		logger:   observability.WithComponent(logger, "notify"),
	}
}

// Registry returns the live subscriber registry, for SSE handlers.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Notify persists a notification and publishes it to live subscribers.
func (s *Service) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("persisting notification: %w", err)
	}
	s.registry.Publish(n)
	return nil
}

// TranscodeCompleted emits the success notification for a video, once.
func (s *Service) TranscodeCompleted(ctx context.Context, video *models.Video) error {
	return s.notifyTerminal(ctx, video, models.OutcomeCompleted, &models.Notification{
		UserID:  video.OwnerID,
		Type:    models.NotificationTypeVideoTranscoding,
		Title:   "Video ready",
		Message: fmt.Sprintf("Your video %q has been processed and is ready to watch.", video.Title),
		Link:    "/videos/" + video.ID.String(),
		VideoID: video.ID,
		Outcome: models.OutcomeCompleted,
	})
}

// TranscodeFailed emits the failure notification for a video, once.
func (s *Service) TranscodeFailed(ctx context.Context, video *models.Video, cause error) error {
	msg := fmt.Sprintf("Processing of your video %q failed.", video.Title)
	if cause != nil {
		msg = fmt.Sprintf("Processing of your video %q failed: %s", video.Title, cause.Error())
	}
	return s.notifyTerminal(ctx, video, models.OutcomeFailed, &models.Notification{
		UserID:  video.OwnerID,
		Type:    models.NotificationTypeVideoTranscoding,
		Title:   "Video processing failed",
		Message: msg,
		Link:    "/videos/" + video.ID.String(),
		VideoID: video.ID,
		Outcome: models.OutcomeFailed,
	})
}

// notifyTerminal sends a terminal transcode notification unless one with the
// same (video, outcome) already exists.
func (s *Service) notifyTerminal(ctx context.Context, video *models.Video, outcome models.TranscodeOutcome, n *models.Notification) error {
	existing, err := s.repo.FindTerminal(ctx, video.ID, outcome)
	if err != nil {
		return fmt.Errorf("checking existing notification: %w", err)
	}
	if existing != nil {
		s.logger.Debug("terminal notification already sent",
			slog.String("video_id", video.ID.String()),
			slog.String("outcome", string(outcome)),
		)
		return nil
	}
	return s.Notify(ctx, n)
}
