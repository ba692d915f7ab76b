package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidforge/vidforge/internal/models"
)

func newVariant(videoID models.ULID, quality string, height int) *models.QualityVariant {
	return &models.QualityVariant{
		VideoID:     videoID,
		Quality:     quality,
		URL:         "http://cdn.test/" + quality + ".mp4",
		StorageKey:  "videos/owner/video/hls/" + quality + ".mp4",
		Size:        1024,
		Width:       height * 16 / 9,
		Height:      height,
		BitrateKbps: height * 2,
	}
}

func TestVariantRepoUpsertConverges(t *testing.T) {
	db := newTestDB(t)
	repo := NewQualityVariantRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")

	first := newVariant(video.ID, "720p", 720)
	require.NoError(t, repo.Upsert(ctx, first))

	// Re-encoding the same rendition replaces the row instead of adding one.
	second := newVariant(video.ID, "720p", 720)
	second.Size = 2048
	second.URL = "http://cdn.test/720p-v2.mp4"
	require.NoError(t, repo.Upsert(ctx, second))

	variants, err := repo.GetByVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.EqualValues(t, 2048, variants[0].Size)
	assert.Equal(t, "http://cdn.test/720p-v2.mp4", variants[0].URL)
}

func TestVariantRepoGetByVideoOrdersByHeight(t *testing.T) {
	db := newTestDB(t)
	repo := NewQualityVariantRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")
	require.NoError(t, repo.Upsert(ctx, newVariant(video.ID, "1080p", 1080)))
	require.NoError(t, repo.Upsert(ctx, newVariant(video.ID, "360p", 360)))
	require.NoError(t, repo.Upsert(ctx, newVariant(video.ID, "720p", 720)))

	variants, err := repo.GetByVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "360p", variants[0].Quality)
	assert.Equal(t, "720p", variants[1].Quality)
	assert.Equal(t, "1080p", variants[2].Quality)
}

func TestVariantRepoSeparateVideos(t *testing.T) {
	db := newTestDB(t)
	repo := NewQualityVariantRepository(db)
	ctx := context.Background()

	a := createTestVideo(t, db, "owner-1")
	b := createTestVideo(t, db, "owner-2")
	require.NoError(t, repo.Upsert(ctx, newVariant(a.ID, "360p", 360)))
	require.NoError(t, repo.Upsert(ctx, newVariant(b.ID, "360p", 360)))

	variants, err := repo.GetByVideo(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, variants, 1)
}

func TestVariantRepoDeleteByVideo(t *testing.T) {
	db := newTestDB(t)
	repo := NewQualityVariantRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")
	require.NoError(t, repo.Upsert(ctx, newVariant(video.ID, "360p", 360)))
	require.NoError(t, repo.Upsert(ctx, newVariant(video.ID, "720p", 720)))

	require.NoError(t, repo.DeleteByVideo(ctx, video.ID))

	variants, err := repo.GetByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestVariantRepoUpsertValidates(t *testing.T) {
	db := newTestDB(t)
	repo := NewQualityVariantRepository(db)

	err := repo.Upsert(context.Background(), &models.QualityVariant{VideoID: models.NewULID()})
	assert.ErrorIs(t, err, models.ErrVariantQualityRequired)

	err = repo.Upsert(context.Background(), &models.QualityVariant{Quality: "720p"})
	assert.ErrorIs(t, err, models.ErrVariantVideoRequired)
}
