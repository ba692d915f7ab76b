package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidforge/vidforge/internal/models"
)

func TestVideoRepoCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)

	video := createTestVideo(t, db, "owner-1")
	assert.False(t, video.ID.IsZero())

	got, err := repo.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "owner-1", got.OwnerID)
	assert.Equal(t, models.TranscodingStatusPending, got.TranscodingStatus)
	assert.Zero(t, got.TranscodingProgress)
}

func TestVideoRepoGetByIDMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)

	got, err := repo.GetByID(context.Background(), models.NewULID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVideoRepoGetByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)

	createTestVideo(t, db, "owner-1")
	createTestVideo(t, db, "owner-1")
	createTestVideo(t, db, "owner-2")

	videos, err := repo.GetByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestVideoRepoStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")

	require.NoError(t, repo.SetProcessing(ctx, video.ID))
	got, err := repo.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscodingStatusProcessing, got.TranscodingStatus)
	assert.Zero(t, got.TranscodingProgress)

	require.NoError(t, repo.SetDuration(ctx, video.ID, 42))
	require.NoError(t, repo.SetProgress(ctx, video.ID, 53))

	require.NoError(t, repo.SetCompleted(ctx, video.ID, "http://cdn.test/master.m3u8"))
	got, err = repo.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscodingStatusCompleted, got.TranscodingStatus)
	assert.Equal(t, 100, got.TranscodingProgress)
	assert.Equal(t, 42, got.DurationSeconds)
	assert.Equal(t, "http://cdn.test/master.m3u8", got.ManifestURL)
	assert.Empty(t, got.TranscodingError)
}

func TestVideoRepoSetFailedKeepsProgress(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")
	require.NoError(t, repo.SetProcessing(ctx, video.ID))
	require.NoError(t, repo.SetProgress(ctx, video.ID, 27))

	require.NoError(t, repo.SetFailed(ctx, video.ID, "encoder exploded"))

	got, err := repo.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscodingStatusFailed, got.TranscodingStatus)
	assert.Equal(t, "encoder exploded", got.TranscodingError)
	assert.Equal(t, 27, got.TranscodingProgress)
}

func TestVideoRepoSetProgressRange(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")

	assert.ErrorIs(t, repo.SetProgress(ctx, video.ID, -1), models.ErrInvalidProgress)
	assert.ErrorIs(t, repo.SetProgress(ctx, video.ID, 101), models.ErrInvalidProgress)
	assert.NoError(t, repo.SetProgress(ctx, video.ID, 0))
	assert.NoError(t, repo.SetProgress(ctx, video.ID, 100))
}

func TestVideoRepoSetPendingResets(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	video := createTestVideo(t, db, "owner-1")
	require.NoError(t, repo.SetCompleted(ctx, video.ID, "http://cdn.test/master.m3u8"))

	require.NoError(t, repo.SetPending(ctx, video.ID))

	got, err := repo.GetByID(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TranscodingStatusPending, got.TranscodingStatus)
	assert.Zero(t, got.TranscodingProgress)
	assert.Empty(t, got.ManifestURL)
	assert.Empty(t, got.TranscodingError)
}

func TestVideoRepoGetStuckProcessing(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	jobs := NewJobRepository(db)
	ctx := context.Background()

	stuck := createTestVideo(t, db, "owner-1")
	require.NoError(t, repo.SetProcessing(ctx, stuck.ID))

	covered := createTestVideo(t, db, "owner-2")
	require.NoError(t, repo.SetProcessing(ctx, covered.ID))
	job := models.NewTranscodeJob(covered, 3)
	require.NoError(t, jobs.Create(ctx, job))
	job.MarkRunning("worker-a")
	require.NoError(t, jobs.Update(ctx, job))

	got, err := repo.GetStuckProcessing(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stuck.ID, got[0].ID)
}
