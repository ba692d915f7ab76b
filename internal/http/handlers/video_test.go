package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/service"
)

func TestCreateVideoEnqueuesJob(t *testing.T) {
	f := newAPIFixture(t)

	video := f.createVideo(t, "uploads/owner-1/clip.mov")
	assert.False(t, video.ID.IsZero())
	assert.Equal(t, models.TranscodingStatusPending, video.TranscodingStatus)

	job, err := f.jobs.FindDuplicatePending(context.Background(), models.JobTypeVideoTranscode, video.ID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "uploads/owner-1/clip.mov", job.SourceKey)
}

func TestCreateVideoRequiresOwner(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/videos", map[string]any{
		"owner_id": "",
		"title":    "clip",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetVideo(t *testing.T) {
	f := newAPIFixture(t)
	video := f.createVideo(t, "uploads/owner-1/clip.mov")

	rec := f.do(t, http.MethodGet, "/api/v1/videos/"+video.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Video
	decodeBody(t, rec, &got)
	assert.Equal(t, video.ID, got.ID)
	assert.Equal(t, "clip", got.Title)
}

func TestGetVideoNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/videos/"+models.NewULID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetVideoInvalidID(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/videos/not-a-ulid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListVideosByOwner(t *testing.T) {
	f := newAPIFixture(t)
	f.createVideo(t, "uploads/owner-1/a.mov")
	f.createVideo(t, "uploads/owner-1/b.mov")

	rec := f.do(t, http.MethodGet, "/api/v1/videos?owner_id=owner-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Videos []models.Video `json:"videos"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Videos, 2)
}

func TestGetVideoStatus(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	video := f.createVideo(t, "uploads/owner-1/clip.mov")

	require.NoError(t, f.videos.SetProcessing(ctx, video.ID))
	require.NoError(t, f.videos.SetProgress(ctx, video.ID, 53))
	require.NoError(t, f.variants.Upsert(ctx, &models.QualityVariant{
		VideoID:     video.ID,
		Quality:     "360p",
		URL:         "/videos/owner-1/x/hls/360p.mp4",
		Width:       640,
		Height:      360,
		BitrateKbps: 800,
	}))

	rec := f.do(t, http.MethodGet, "/api/v1/videos/"+video.ID.String()+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status service.StatusProjection
	decodeBody(t, rec, &status)
	assert.Equal(t, models.TranscodingStatusProcessing, status.Status)
	assert.Equal(t, 53, status.Progress)
	require.Len(t, status.Variants, 1)
	assert.Equal(t, "360p", status.Variants[0].Quality)
}

func TestRetriggerTranscode(t *testing.T) {
	f := newAPIFixture(t)
	video := f.createVideo(t, "uploads/owner-1/clip.mov")

	rec := f.do(t, http.MethodPost, "/api/v1/videos/"+video.ID.String()+"/transcode", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var job models.Job
	decodeBody(t, rec, &job)
	assert.Equal(t, models.JobTypeVideoTranscode, job.Type)
	assert.True(t, job.IsPending())
}

func TestRetriggerTranscodeNoSource(t *testing.T) {
	f := newAPIFixture(t)
	video := f.createVideo(t, "")

	rec := f.do(t, http.MethodPost, "/api/v1/videos/"+video.ID.String()+"/transcode", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
