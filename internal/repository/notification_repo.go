package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vidforge/vidforge/internal/models"
)

// notificationRepo implements NotificationRepository using GORM.
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

var _ NotificationRepository = (*notificationRepo)(nil)

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) FindTerminal(ctx context.Context, videoID models.ULID, outcome models.TranscodeOutcome) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).
		Where("video_id = ? AND outcome = ?", videoID, outcome).
		First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding terminal notification: %w", err)
	}
	return &n, nil
}

func (r *notificationRepo) GetByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []*models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("getting notifications for user: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id models.ULID) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		UpdateColumn("read", true)
	if result.Error != nil {
		return fmt.Errorf("marking notification read: %w", result.Error)
	}
	return nil
}
