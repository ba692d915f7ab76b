package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/repository"
)

// JobHandler handles job queue endpoints.
type JobHandler struct {
	jobs repository.JobRepository
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobs repository.JobRepository) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// ListJobsInput optionally filters the job list.
type ListJobsInput struct {
	Status string `query:"status" enum:"pending,running," doc:"Filter: pending (incl. scheduled retries) or running"`
}

// ListJobsOutput wraps a job list response.
type ListJobsOutput struct {
	Body struct {
		Jobs []*models.Job `json:"jobs"`
	}
}

// GetJobInput identifies a job by path parameter.
type GetJobInput struct {
	ID string `path:"id" doc:"Job ID"`
}

// JobOutput wraps a single job response.
type JobOutput struct {
	Body models.Job
}

// Register registers the job routes with the API.
func (h *JobHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listJobs",
		Method:      "GET",
		Path:        "/api/v1/jobs",
		Summary:     "List jobs",
		Tags:        []string{"Jobs"},
	}, h.ListJobs)

	huma.Register(api, huma.Operation{
		OperationID: "getJob",
		Method:      "GET",
		Path:        "/api/v1/jobs/{id}",
		Summary:     "Get a job",
		Tags:        []string{"Jobs"},
	}, h.GetJob)

	huma.Register(api, huma.Operation{
		OperationID: "cancelJob",
		Method:      "POST",
		Path:        "/api/v1/jobs/{id}/cancel",
		Summary:     "Cancel a pending job",
		Description: "Cancels a job that has not started running yet.",
		Tags:        []string{"Jobs"},
	}, h.CancelJob)
}

// ListJobs returns jobs, optionally filtered by status.
func (h *JobHandler) ListJobs(ctx context.Context, input *ListJobsInput) (*ListJobsOutput, error) {
	var (
		jobs []*models.Job
		err  error
	)
	switch input.Status {
	case "pending":
		jobs, err = h.jobs.GetPending(ctx)
	case "running":
		jobs, err = h.jobs.GetRunning(ctx)
	default:
		jobs, err = h.jobs.GetAll(ctx)
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list jobs", err)
	}

	out := &ListJobsOutput{}
	out.Body.Jobs = jobs
	return out, nil
}

// GetJob returns a job by ID.
func (h *JobHandler) GetJob(ctx context.Context, input *GetJobInput) (*JobOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid job ID")
	}

	job, err := h.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get job", err)
	}
	if job == nil {
		return nil, huma.Error404NotFound("job not found")
	}

	return &JobOutput{Body: *job}, nil
}

// CancelJob cancels a job that has not started running.
func (h *JobHandler) CancelJob(ctx context.Context, input *GetJobInput) (*JobOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid job ID")
	}

	job, err := h.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get job", err)
	}
	if job == nil {
		return nil, huma.Error404NotFound("job not found")
	}
	if !job.IsPending() {
		return nil, huma.Error409Conflict("only pending jobs can be cancelled")
	}

	job.MarkCancelled()
	if err := h.jobs.Update(ctx, job); err != nil {
		return nil, huma.Error500InternalServerError("failed to cancel job", err)
	}

	return &JobOutput{Body: *job}, nil
}
