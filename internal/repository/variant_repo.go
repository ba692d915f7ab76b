package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vidforge/vidforge/internal/models"
)

// variantRepo implements QualityVariantRepository using GORM.
type variantRepo struct {
	db *gorm.DB
}

// NewQualityVariantRepository creates a new QualityVariantRepository.
func NewQualityVariantRepository(db *gorm.DB) QualityVariantRepository {
	return &variantRepo{db: db}
}

var _ QualityVariantRepository = (*variantRepo)(nil)

// Upsert creates the variant, or replaces the existing row for the same
// (video_id, quality) pair. Re-running a transcode therefore converges on a
// single row per rendition.
func (r *variantRepo) Upsert(ctx context.Context, variant *models.QualityVariant) error {
	if err := variant.Validate(); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "video_id"}, {Name: "quality"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"url", "storage_key", "size", "width", "height", "bitrate_kbps", "updated_at",
		}),
	}).Create(variant).Error
	if err != nil {
		return fmt.Errorf("upserting variant %s/%s: %w", variant.VideoID, variant.Quality, err)
	}
	return nil
}

func (r *variantRepo) GetByVideo(ctx context.Context, videoID models.ULID) ([]*models.QualityVariant, error) {
	var variants []*models.QualityVariant
	if err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("height ASC").
		Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("getting variants for video: %w", err)
	}
	return variants, nil
}

func (r *variantRepo) DeleteByVideo(ctx context.Context, videoID models.ULID) error {
	if err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Delete(&models.QualityVariant{}).Error; err != nil {
		return fmt.Errorf("deleting variants for video: %w", err)
	}
	return nil
}
