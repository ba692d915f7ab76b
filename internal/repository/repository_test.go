package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vidforge/vidforge/internal/models"
)

// newTestDB opens an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Video{},
		&models.QualityVariant{},
		&models.Job{},
		&models.Notification{},
	))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// createTestVideo persists a pending video for the given owner.
func createTestVideo(t *testing.T, db *gorm.DB, ownerID string) *models.Video {
	t.Helper()

	video := &models.Video{
		OwnerID:           ownerID,
		Title:             "test video",
		SourceKey:         "uploads/" + ownerID + "/source.mov",
		TranscodingStatus: models.TranscodingStatusPending,
	}
	require.NoError(t, NewVideoRepository(db).Create(context.Background(), video))
	return video
}
