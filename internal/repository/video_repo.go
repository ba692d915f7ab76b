package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vidforge/vidforge/internal/models"
)

// videoRepo implements VideoRepository using GORM.
type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepo{db: db}
}

var _ VideoRepository = (*videoRepo)(nil)

func (r *videoRepo) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	return nil
}

func (r *videoRepo) GetByID(ctx context.Context, id models.ULID) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video by ID: %w", err)
	}
	return &video, nil
}

func (r *videoRepo) GetByOwner(ctx context.Context, ownerID string) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("getting videos by owner: %w", err)
	}
	return videos, nil
}

func (r *videoRepo) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("updating video: %w", err)
	}
	return nil
}

func (r *videoRepo) SetProcessing(ctx context.Context, id models.ULID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"transcoding_status":   models.TranscodingStatusProcessing,
		"transcoding_progress": 0,
		"transcoding_error":    "",
	})
}

func (r *videoRepo) SetProgress(ctx context.Context, id models.ULID, progress int) error {
	if progress < 0 || progress > 100 {
		return models.ErrInvalidProgress
	}
	return r.updateColumns(ctx, id, map[string]interface{}{
		"transcoding_progress": progress,
	})
}

func (r *videoRepo) SetDuration(ctx context.Context, id models.ULID, seconds int) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"duration_seconds": seconds,
	})
}

func (r *videoRepo) SetCompleted(ctx context.Context, id models.ULID, manifestURL string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"transcoding_status":   models.TranscodingStatusCompleted,
		"transcoding_progress": 100,
		"transcoding_error":    "",
		"manifest_url":         manifestURL,
	})
}

func (r *videoRepo) SetFailed(ctx context.Context, id models.ULID, message string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"transcoding_status": models.TranscodingStatusFailed,
		"transcoding_error":  message,
	})
}

func (r *videoRepo) SetPending(ctx context.Context, id models.ULID) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"transcoding_status":   models.TranscodingStatusPending,
		"transcoding_progress": 0,
		"transcoding_error":    "",
		"manifest_url":         "",
	})
}

func (r *videoRepo) GetStuckProcessing(ctx context.Context) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.WithContext(ctx).
		Where("transcoding_status = ?", models.TranscodingStatusProcessing).
		Where("NOT EXISTS (SELECT 1 FROM jobs WHERE jobs.video_id = videos.id AND jobs.status = ?)",
			models.JobStatusRunning).
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("getting stuck processing videos: %w", err)
	}
	return videos, nil
}

// updateColumns writes columns directly, bypassing model hooks.
func (r *videoRepo) updateColumns(ctx context.Context, id models.ULID, cols map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).UpdateColumns(cols)
	if result.Error != nil {
		return fmt.Errorf("updating video %s: %w", id, result.Error)
	}
	return nil
}
