package models

import (
	"time"

	"gorm.io/gorm"
)

// JobType represents the type of job to execute.
type JobType string

const (
	// JobTypeVideoTranscode represents a video transcoding job.
	JobTypeVideoTranscode JobType = "video_transcode"
	// JobTypeMaintenance represents a periodic cleanup job.
	JobTypeMaintenance JobType = "maintenance"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be executed.
	JobStatusPending JobStatus = "pending"
	// JobStatusScheduled indicates the job is scheduled for future execution,
	// typically a retry with backoff.
	JobStatusScheduled JobStatus = "scheduled"
	// JobStatusRunning indicates the job is currently executing.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates the job was cancelled before it ran.
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents a durable queue entry for background work.
type Job struct {
	BaseModel

	// Type indicates what kind of job this is.
	Type JobType `gorm:"not null;size:50;index" json:"type"`

	// VideoID is the video this job operates on. Also used to
	// deduplicate pending jobs and to serialize execution per video.
	VideoID ULID `gorm:"type:varchar(26);index" json:"video_id,omitempty"`

	// SourceKey is the object-store key of the source file to transcode.
	SourceKey string `gorm:"size:1024" json:"source_key,omitempty"`

	// OwnerID is the owner of the target video, carried for storage key layout.
	OwnerID string `gorm:"size:64" json:"owner_id,omitempty"`

	// Status indicates the current status of the job.
	Status JobStatus `gorm:"not null;default:'pending';size:20;index" json:"status"`

	// NextRunAt is when the job becomes eligible to run.
	// Set on retries to implement backoff.
	NextRunAt *time.Time `gorm:"index" json:"next_run_at,omitempty"`

	// StartedAt is when the job started executing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job finished, successfully or not.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DurationMs is the execution duration in milliseconds.
	DurationMs int64 `json:"duration_ms,omitempty"`

	// AttemptCount is the number of times this job has been attempted.
	AttemptCount int `gorm:"default:0" json:"attempt_count"`

	// MaxAttempts is the maximum number of attempts (0 = no retries).
	MaxAttempts int `gorm:"default:3" json:"max_attempts"`

	// BackoffSeconds is the initial retry backoff. Each retry doubles it.
	BackoffSeconds int `gorm:"default:60" json:"backoff_seconds"`

	// LastError contains the error message from the last failed attempt.
	LastError string `gorm:"size:4096" json:"last_error,omitempty"`

	// LockedBy is the worker ID that has claimed this job.
	LockedBy string `gorm:"size:100;index" json:"locked_by,omitempty"`

	// LockedAt is when the job was claimed.
	LockedAt *time.Time `json:"locked_at,omitempty"`
}

// TableName returns the table name for Job.
func (Job) TableName() string {
	return "jobs"
}

// IsPending returns true if the job is waiting to run.
func (j *Job) IsPending() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusScheduled
}

// IsRunning returns true if the job is currently executing.
func (j *Job) IsRunning() bool {
	return j.Status == JobStatusRunning
}

// IsFinished returns true if the job has reached a terminal state.
func (j *Job) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// CanRetry returns true if a failed job has attempts remaining.
func (j *Job) CanRetry() bool {
	return j.Status == JobStatusFailed && j.AttemptCount < j.MaxAttempts
}

// MarkRunning marks the job as claimed by a worker.
func (j *Job) MarkRunning(workerID string) {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.LockedBy = workerID
	j.LockedAt = &now
	j.AttemptCount++
	j.LastError = ""
}

// MarkCompleted marks the job as completed successfully.
func (j *Job) MarkCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.LastError = ""
	if j.StartedAt != nil {
		j.DurationMs = now.Sub(*j.StartedAt).Milliseconds()
	}
	j.LockedBy = ""
	j.LockedAt = nil
}

// MarkFailed marks the job as failed with an error message.
func (j *Job) MarkFailed(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	if err != nil {
		j.LastError = err.Error()
	}
	if j.StartedAt != nil {
		j.DurationMs = now.Sub(*j.StartedAt).Milliseconds()
	}
	j.LockedBy = ""
	j.LockedAt = nil
}

// MarkCancelled marks the job as cancelled.
func (j *Job) MarkCancelled() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
	j.LockedBy = ""
	j.LockedAt = nil
}

// CalculateNextBackoff returns the backoff duration for the next retry.
// Uses exponential backoff: base * 2^(attemptCount-1), capped at 1 hour.
func (j *Job) CalculateNextBackoff() time.Duration {
	const maxBackoffSeconds = 3600

	if j.BackoffSeconds <= 0 {
		j.BackoffSeconds = 60
	}

	attempts := j.AttemptCount
	if attempts < 1 {
		attempts = 1
	}

	multiplier := 1 << (attempts - 1)
	if multiplier < 1 {
		multiplier = 1
	}

	backoffSecs := j.BackoffSeconds * multiplier
	if backoffSecs > maxBackoffSeconds {
		backoffSecs = maxBackoffSeconds
	}

	return time.Duration(backoffSecs) * time.Second
}

// ScheduleRetry schedules the job for retry with exponential backoff.
// No-op when the job cannot be retried.
func (j *Job) ScheduleRetry() {
	if !j.CanRetry() {
		return
	}

	nextRun := time.Now().Add(j.CalculateNextBackoff())
	j.NextRunAt = &nextRun
	j.Status = JobStatusScheduled
	j.LockedBy = ""
	j.LockedAt = nil
}

// Validate performs basic validation on the job.
func (j *Job) Validate() error {
	if j.Type == "" {
		return ErrJobTypeRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the job and generates its ULID.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if err := j.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return j.Validate()
}

// BeforeUpdate is a GORM hook that validates the job before update.
func (j *Job) BeforeUpdate(tx *gorm.DB) error {
	return j.Validate()
}

// NewTranscodeJob creates a pending transcode job for a video.
func NewTranscodeJob(video *Video, maxAttempts int) *Job {
	return &Job{
		Type:        JobTypeVideoTranscode,
		VideoID:     video.ID,
		SourceKey:   video.SourceKey,
		OwnerID:     video.OwnerID,
		Status:      JobStatusPending,
		MaxAttempts: maxAttempts,
	}
}
