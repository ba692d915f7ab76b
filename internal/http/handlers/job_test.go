package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidforge/vidforge/internal/models"
)

func TestListJobs(t *testing.T) {
	f := newAPIFixture(t)
	f.createVideo(t, "uploads/owner-1/a.mov")
	f.createVideo(t, "uploads/owner-1/b.mov")

	rec := f.do(t, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []models.Job `json:"jobs"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Jobs, 2)
}

func TestListJobsFilterByStatus(t *testing.T) {
	f := newAPIFixture(t)
	f.createVideo(t, "uploads/owner-1/a.mov")
	f.createVideo(t, "uploads/owner-1/b.mov")

	claimed, err := f.jobs.AcquireJob(context.Background(), "worker-test")
	require.NoError(t, err)
	require.NotNil(t, claimed)

	var body struct {
		Jobs []models.Job `json:"jobs"`
	}

	rec := f.do(t, http.MethodGet, "/api/v1/jobs?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	assert.Len(t, body.Jobs, 1)

	rec = f.do(t, http.MethodGet, "/api/v1/jobs?status=running", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, claimed.ID, body.Jobs[0].ID)
}

func TestGetJob(t *testing.T) {
	f := newAPIFixture(t)
	video := f.createVideo(t, "uploads/owner-1/a.mov")

	job, err := f.jobs.FindDuplicatePending(context.Background(), models.JobTypeVideoTranscode, video.ID)
	require.NoError(t, err)
	require.NotNil(t, job)

	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Job
	decodeBody(t, rec, &got)
	assert.Equal(t, job.ID, got.ID)
}

func TestGetJobNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+models.NewULID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelPendingJob(t *testing.T) {
	f := newAPIFixture(t)
	video := f.createVideo(t, "uploads/owner-1/a.mov")

	job, err := f.jobs.FindDuplicatePending(context.Background(), models.JobTypeVideoTranscode, video.ID)
	require.NoError(t, err)
	require.NotNil(t, job)

	rec := f.do(t, http.MethodPost, "/api/v1/jobs/"+job.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got models.Job
	decodeBody(t, rec, &got)
	assert.Equal(t, models.JobStatusCancelled, got.Status)
}

func TestCancelRunningJobConflicts(t *testing.T) {
	f := newAPIFixture(t)
	f.createVideo(t, "uploads/owner-1/a.mov")

	claimed, err := f.jobs.AcquireJob(context.Background(), "worker-test")
	require.NoError(t, err)
	require.NotNil(t, claimed)

	rec := f.do(t, http.MethodPost, "/api/v1/jobs/"+claimed.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
