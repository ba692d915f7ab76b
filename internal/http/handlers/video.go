package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/service"
)

// VideoHandler handles video endpoints.
type VideoHandler struct {
	videos *service.VideoService
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(videos *service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// CreateVideoRequest is the payload for creating a video.
type CreateVideoRequest struct {
	OwnerID   string `json:"owner_id" doc:"Owner of the video" minLength:"1"`
	Title     string `json:"title" doc:"Display title"`
	SourceKey string `json:"source_key,omitempty" doc:"Object store key of the uploaded source; when set, a transcode job is enqueued"`
}

// CreateVideoInput is the input for the create endpoint.
type CreateVideoInput struct {
	Body CreateVideoRequest
}

// VideoOutput wraps a video response.
type VideoOutput struct {
	Body models.Video
}

// GetVideoInput identifies a video by path parameter.
type GetVideoInput struct {
	ID string `path:"id" doc:"Video ID"`
}

// StatusOutput wraps a transcoding status projection.
type StatusOutput struct {
	Body service.StatusProjection
}

// ListVideosInput filters the video list by owner.
type ListVideosInput struct {
	OwnerID string `query:"owner_id" doc:"Owner to list videos for" minLength:"1"`
}

// ListVideosOutput wraps a video list response.
type ListVideosOutput struct {
	Body struct {
		Videos []*models.Video `json:"videos"`
	}
}

// RetriggerOutput wraps the job created by a transcode re-trigger.
type RetriggerOutput struct {
	Body models.Job
}

// Register registers the video routes with the API.
func (h *VideoHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "createVideo",
		Method:        "POST",
		Path:          "/api/v1/videos",
		Summary:       "Create a video",
		Description:   "Creates a video record. When source_key is set, a transcode job is enqueued.",
		Tags:          []string{"Videos"},
		DefaultStatus: 201,
	}, h.CreateVideo)

	huma.Register(api, huma.Operation{
		OperationID: "listVideos",
		Method:      "GET",
		Path:        "/api/v1/videos",
		Summary:     "List videos by owner",
		Tags:        []string{"Videos"},
	}, h.ListVideos)

	huma.Register(api, huma.Operation{
		OperationID: "getVideo",
		Method:      "GET",
		Path:        "/api/v1/videos/{id}",
		Summary:     "Get a video",
		Tags:        []string{"Videos"},
	}, h.GetVideo)

	huma.Register(api, huma.Operation{
		OperationID: "getVideoStatus",
		Method:      "GET",
		Path:        "/api/v1/videos/{id}/status",
		Summary:     "Get transcoding status",
		Description: "Returns the transcoding status projection: state, progress, error, manifest URL and quality variants.",
		Tags:        []string{"Videos"},
	}, h.GetVideoStatus)

	huma.Register(api, huma.Operation{
		OperationID:   "retriggerTranscode",
		Method:        "POST",
		Path:          "/api/v1/videos/{id}/transcode",
		Summary:       "Re-trigger transcoding",
		Description:   "Resets the video to pending and enqueues a fresh transcode job.",
		Tags:          []string{"Videos"},
		DefaultStatus: 202,
	}, h.RetriggerTranscode)
}

// CreateVideo creates a video and enqueues its transcode job.
func (h *VideoHandler) CreateVideo(ctx context.Context, input *CreateVideoInput) (*VideoOutput, error) {
	video := &models.Video{
		OwnerID:           input.Body.OwnerID,
		Title:             input.Body.Title,
		SourceKey:         input.Body.SourceKey,
		TranscodingStatus: models.TranscodingStatusPending,
	}

	if err := h.videos.Create(ctx, video); err != nil {
		if errors.Is(err, models.ErrVideoOwnerRequired) {
			return nil, huma.Error422UnprocessableEntity("owner_id is required")
		}
		return nil, huma.Error500InternalServerError("failed to create video", err)
	}

	return &VideoOutput{Body: *video}, nil
}

// ListVideos returns an owner's videos, newest first.
func (h *VideoHandler) ListVideos(ctx context.Context, input *ListVideosInput) (*ListVideosOutput, error) {
	videos, err := h.videos.ListByOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list videos", err)
	}

	out := &ListVideosOutput{}
	out.Body.Videos = videos
	return out, nil
}

// GetVideo returns a video by ID.
func (h *VideoHandler) GetVideo(ctx context.Context, input *GetVideoInput) (*VideoOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid video ID")
	}

	video, err := h.videos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return nil, huma.Error404NotFound("video not found")
		}
		return nil, huma.Error500InternalServerError("failed to get video", err)
	}

	return &VideoOutput{Body: *video}, nil
}

// GetVideoStatus returns the transcoding status projection.
func (h *VideoHandler) GetVideoStatus(ctx context.Context, input *GetVideoInput) (*StatusOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid video ID")
	}

	status, err := h.videos.Status(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			return nil, huma.Error404NotFound("video not found")
		}
		return nil, huma.Error500InternalServerError("failed to get status", err)
	}

	return &StatusOutput{Body: *status}, nil
}

// RetriggerTranscode enqueues a fresh transcode for a video.
func (h *VideoHandler) RetriggerTranscode(ctx context.Context, input *GetVideoInput) (*RetriggerOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid video ID")
	}

	job, err := h.videos.Retrigger(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			return nil, huma.Error404NotFound("video not found")
		case errors.Is(err, service.ErrNoSource):
			return nil, huma.Error409Conflict("video has no source to transcode")
		default:
			return nil, huma.Error500InternalServerError("failed to re-trigger transcode", err)
		}
	}

	out := &RetriggerOutput{}
	if job != nil {
		out.Body = *job
	}
	return out, nil
}
