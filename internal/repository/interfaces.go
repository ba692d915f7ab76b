// Package repository provides data access interfaces and GORM implementations
// for vidforge entities. Repositories return (nil, nil) when a record does
// not exist; callers decide whether absence is an error.
package repository

import (
	"context"
	"time"

	"github.com/vidforge/vidforge/internal/models"
)

// VideoRepository manages video records and their transcoding state.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id models.ULID) (*models.Video, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*models.Video, error)
	Update(ctx context.Context, video *models.Video) error

	// SetProcessing moves the video to processing and resets progress to zero.
	SetProcessing(ctx context.Context, id models.ULID) error
	// SetProgress updates the transcoding progress percentage.
	SetProgress(ctx context.Context, id models.ULID, progress int) error
	// SetDuration persists the probed media duration.
	SetDuration(ctx context.Context, id models.ULID, seconds int) error
	// SetCompleted marks the transcode finished with the manifest URL and 100% progress.
	SetCompleted(ctx context.Context, id models.ULID, manifestURL string) error
	// SetFailed marks the transcode failed with a message. Progress is left untouched.
	SetFailed(ctx context.Context, id models.ULID, message string) error
	// SetPending resets the video for a fresh transcode attempt.
	SetPending(ctx context.Context, id models.ULID) error

	// GetStuckProcessing returns videos in processing state whose ID is not
	// referenced by any running job.
	GetStuckProcessing(ctx context.Context) ([]*models.Video, error)
}

// QualityVariantRepository manages encoded rendition records.
type QualityVariantRepository interface {
	// Upsert creates or replaces the variant for its (video, quality) pair.
	Upsert(ctx context.Context, variant *models.QualityVariant) error
	GetByVideo(ctx context.Context, videoID models.ULID) ([]*models.QualityVariant, error)
	DeleteByVideo(ctx context.Context, videoID models.ULID) error
}

// JobRepository manages the durable job queue.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id models.ULID) (*models.Job, error)
	GetAll(ctx context.Context) ([]*models.Job, error)
	GetPending(ctx context.Context) ([]*models.Job, error)
	GetRunning(ctx context.Context) ([]*models.Job, error)
	Update(ctx context.Context, job *models.Job) error

	// AcquireJob atomically claims one runnable job for the worker.
	// Jobs whose video already has another running job are skipped, so at
	// most one transcode runs per video at a time. Returns (nil, nil) when
	// no job is available.
	AcquireJob(ctx context.Context, workerID string) (*models.Job, error)
	// ReleaseJob drops a worker's claim and returns the job to pending.
	ReleaseJob(ctx context.Context, id models.ULID) error
	// FindDuplicatePending returns an existing non-terminal job for the
	// same type and video, used to avoid double-enqueueing.
	FindDuplicatePending(ctx context.Context, jobType models.JobType, videoID models.ULID) (*models.Job, error)
	// RecoverStale returns stale running jobs (lock older than cutoff) to
	// pending. Returns the number of recovered jobs.
	RecoverStale(ctx context.Context, lockCutoff time.Time) (int64, error)
	// DeleteFinished removes terminal jobs completed before the cutoff.
	DeleteFinished(ctx context.Context, before time.Time) (int64, error)
}

// NotificationRepository manages persisted user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// FindTerminal returns an existing notification for the given video and
	// outcome, used to deduplicate terminal transcode events.
	FindTerminal(ctx context.Context, videoID models.ULID, outcome models.TranscodeOutcome) (*models.Notification, error)
	GetByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id models.ULID) error
}
