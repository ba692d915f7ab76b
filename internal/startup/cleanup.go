// Package startup performs boot-time recovery: sweeping orphaned scratch
// workspaces and failing videos left mid-transcode by an unclean shutdown.
package startup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/observability"
	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/internal/transcode"
)

// Cleanup runs boot-time recovery tasks.
type Cleanup struct {
	videos          repository.VideoRepository
	jobs            repository.JobRepository
	workspaceRoot   string
	workspaceMaxAge time.Duration
	logger          *slog.Logger
}

// NewCleanup creates the boot-time cleanup runner.
func NewCleanup(
	videos repository.VideoRepository,
	jobs repository.JobRepository,
	workspaceRoot string,
	workspaceMaxAge time.Duration,
	logger *slog.Logger,
) *Cleanup {
	if logger == nil {
		logger = slog.Default()
	}
	if workspaceMaxAge <= 0 {
		workspaceMaxAge = time.Hour
	}
	return &Cleanup{
		videos:          videos,
		jobs:            jobs,
		workspaceRoot:   workspaceRoot,
		workspaceMaxAge: workspaceMaxAge,
		logger:          observability.WithComponent(logger, "startup"),
	}
}

// Run executes all recovery tasks. Individual task failures are logged and
// do not block startup.
func (c *Cleanup) Run(ctx context.Context) {
	c.sweepWorkspaces()
	c.recoverStaleJobs(ctx)
	c.recoverStuckVideos(ctx)
}

// sweepWorkspaces removes scratch directories left behind by a previous
// process. Only directories with the workspace prefix and older than the
// cutoff are touched, so workspaces of a concurrently running instance
// survive.
func (c *Cleanup) sweepWorkspaces() {
	root := c.workspaceRoot
	if root == "" {
		root = os.TempDir()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		c.logger.Warn("workspace sweep skipped",
			slog.String("root", root),
			slog.String("error", err.Error()))
		return
	}

	cutoff := time.Now().Add(-c.workspaceMaxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), transcode.WorkspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("failed to remove orphaned workspace",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info("removed orphaned workspaces", slog.Int("count", removed))
	}
}

// recoverStaleJobs returns jobs still marked running from a previous process
// to the queue. At boot no worker of this process holds a lock yet, so every
// running job is stale.
func (c *Cleanup) recoverStaleJobs(ctx context.Context) {
	recovered, err := c.jobs.RecoverStale(ctx, time.Now())
	if err != nil {
		c.logger.Error("stale job recovery failed", slog.String("error", err.Error()))
		return
	}
	if recovered > 0 {
		c.logger.Warn("recovered jobs interrupted by restart", slog.Int64("count", recovered))
	}
}

// recoverStuckVideos fails videos stuck in processing with no running job.
// Their jobs either retried already or exhausted attempts; a processing
// status with no worker behind it would otherwise never resolve.
func (c *Cleanup) recoverStuckVideos(ctx context.Context) {
	stuck, err := c.videos.GetStuckProcessing(ctx)
	if err != nil {
		c.logger.Error("stuck video scan failed", slog.String("error", err.Error()))
		return
	}

	for _, video := range stuck {
		// A pending or scheduled job means the transcode will rerun.
		job, err := c.jobs.FindDuplicatePending(ctx, models.JobTypeVideoTranscode, video.ID)
		if err != nil {
			c.logger.Error("checking jobs for stuck video failed",
				slog.String("video_id", video.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if job != nil {
			continue
		}

		if err := c.videos.SetFailed(ctx, video.ID, "transcoding interrupted by restart"); err != nil {
			c.logger.Error("failed to mark stuck video failed",
				slog.String("video_id", video.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		c.logger.Warn("marked interrupted video as failed",
			slog.String("video_id", video.ID.String()))
	}
}
