package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/transcode"
)

// TranscodeHandler adapts the transcode orchestrator to the job queue.
type TranscodeHandler struct {
	orchestrator *transcode.Orchestrator
	logger       *slog.Logger
}

var _ JobHandler = (*TranscodeHandler)(nil)

// NewTranscodeHandler creates a handler for video transcode jobs.
func NewTranscodeHandler(orchestrator *transcode.Orchestrator) *TranscodeHandler {
	return &TranscodeHandler{
		orchestrator: orchestrator,
		logger:       slog.Default(),
	}
}

// WithLogger sets the logger.
func (h *TranscodeHandler) WithLogger(logger *slog.Logger) *TranscodeHandler {
	h.logger = logger
	return h
}

// Execute runs a transcode job. Missing videos and sources too small for the
// lowest ladder rung are fatal: no retry can change the outcome.
func (h *TranscodeHandler) Execute(ctx context.Context, job *models.Job) error {
	err := h.orchestrator.Run(ctx, transcode.Request{
		VideoID:   job.VideoID,
		SourceKey: job.SourceKey,
		OwnerID:   job.OwnerID,
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, transcode.ErrVideoNotFound) || errors.Is(err, transcode.ErrEmptyPlan) {
		return Fatal(err)
	}
	return err
}
