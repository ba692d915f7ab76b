package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vidforge/vidforge/internal/repository"
)

// RunnerConfig holds configuration for the runner.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers. Default: 2.
	WorkerCount int

	// PollInterval is how often workers poll for jobs. Default: 5s.
	PollInterval time.Duration

	// LockTimeout is the duration after which a locked job is considered
	// stale and returned to the queue. Default: 30 minutes.
	LockTimeout time.Duration

	// WorkerID is a unique identifier for this runner instance.
	// Default: generated from the start timestamp.
	WorkerID string

	// JobTimeout is the maximum duration for a single job execution.
	// Default: 4 hours.
	JobTimeout time.Duration

	// MaintenanceCron is a 5-field cron expression for the cleanup sweep.
	// Empty disables the sweep.
	MaintenanceCron string

	// JobRetention is how long finished jobs are kept. Default: 7 days.
	JobRetention time.Duration
}

// DefaultRunnerConfig returns the default runner configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:     2,
		PollInterval:    5 * time.Second,
		LockTimeout:     30 * time.Minute,
		WorkerID:        fmt.Sprintf("worker-%d", time.Now().UnixNano()),
		JobTimeout:      4 * time.Hour,
		MaintenanceCron: "0 3 * * *",
		JobRetention:    7 * 24 * time.Hour,
	}
}

// Runner manages a pool of workers that execute jobs.
type Runner struct {
	mu sync.RWMutex

	jobRepo  repository.JobRepository
	executor *Executor
	logger   *slog.Logger
	cfg      RunnerConfig
	schedule cron.Schedule

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a new job runner with default configuration.
func NewRunner(jobRepo repository.JobRepository, executor *Executor) *Runner {
	return &Runner{
		jobRepo:  jobRepo,
		executor: executor,
		logger:   slog.Default(),
		cfg:      DefaultRunnerConfig(),
	}
}

// WithLogger sets a custom logger.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	r.logger = logger
	return r
}

// WithConfig applies configuration to the runner. Zero values keep defaults.
func (r *Runner) WithConfig(cfg RunnerConfig) *Runner {
	if cfg.WorkerCount > 0 {
		r.cfg.WorkerCount = cfg.WorkerCount
	}
	if cfg.PollInterval > 0 {
		r.cfg.PollInterval = cfg.PollInterval
	}
	if cfg.LockTimeout > 0 {
		r.cfg.LockTimeout = cfg.LockTimeout
	}
	if cfg.WorkerID != "" {
		r.cfg.WorkerID = cfg.WorkerID
	}
	if cfg.JobTimeout > 0 {
		r.cfg.JobTimeout = cfg.JobTimeout
	}
	if cfg.JobRetention > 0 {
		r.cfg.JobRetention = cfg.JobRetention
	}
	r.cfg.MaintenanceCron = cfg.MaintenanceCron
	return r
}

// Start begins the runner with the configured number of workers.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx != nil {
		return fmt.Errorf("runner already started")
	}

	if r.cfg.MaintenanceCron != "" {
		schedule, err := cron.ParseStandard(r.cfg.MaintenanceCron)
		if err != nil {
			return fmt.Errorf("parsing maintenance schedule %q: %w", r.cfg.MaintenanceCron, err)
		}
		r.schedule = schedule
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	for i := 0; i < r.cfg.WorkerCount; i++ {
		workerID := fmt.Sprintf("%s-%d", r.cfg.WorkerID, i)
		r.wg.Add(1)
		go r.worker(workerID)
	}

	if r.schedule != nil {
		r.wg.Add(1)
		go r.maintenanceLoop()
	}

	r.wg.Add(1)
	go r.staleRecoveryLoop()

	r.logger.Info("runner started",
		slog.Int("workers", r.cfg.WorkerCount),
		slog.Duration("poll_interval", r.cfg.PollInterval),
		slog.String("worker_id", r.cfg.WorkerID))

	return nil
}

// Stop stops the runner and waits for in-flight jobs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	r.ctx = nil
	r.cancel = nil
	r.mu.Unlock()

	r.logger.Info("runner stopped")
}

var errNoJobs = fmt.Errorf("no jobs available")

// worker is the main worker loop.
func (r *Runner) worker(workerID string) {
	defer r.wg.Done()

	r.logger.Debug("worker started", slog.String("worker_id", workerID))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("worker stopping", slog.String("worker_id", workerID))
			return
		default:
			if err := r.processJob(workerID); err != nil {
				if err != errNoJobs {
					r.logger.Error("error processing job",
						slog.String("worker_id", workerID),
						slog.Any("error", err))
				}

				select {
				case <-r.ctx.Done():
					return
				case <-time.After(r.cfg.PollInterval):
				}
			}
		}
	}
}

// processJob acquires and executes a single job.
func (r *Runner) processJob(workerID string) error {
	job, err := r.jobRepo.AcquireJob(r.ctx, workerID)
	if err != nil {
		return fmt.Errorf("acquiring job: %w", err)
	}
	if job == nil {
		return errNoJobs
	}

	r.logger.Debug("acquired job",
		slog.String("worker_id", workerID),
		slog.String("job_id", job.ID.String()),
		slog.String("type", string(job.Type)))

	jobCtx, cancel := context.WithTimeout(r.ctx, r.cfg.JobTimeout)
	defer cancel()

	if err := r.executor.Execute(jobCtx, job); err != nil {
		return fmt.Errorf("executing job: %w", err)
	}
	return nil
}

// maintenanceLoop deletes finished jobs on the configured cron schedule.
func (r *Runner) maintenanceLoop() {
	defer r.wg.Done()

	for {
		next := r.schedule.Next(time.Now())
		select {
		case <-r.ctx.Done():
			return
		case <-time.After(time.Until(next)):
			r.runMaintenance()
		}
	}
}

// runMaintenance removes terminal jobs older than the retention window.
func (r *Runner) runMaintenance() {
	cutoff := time.Now().Add(-r.cfg.JobRetention)

	deleted, err := r.jobRepo.DeleteFinished(r.ctx, cutoff)
	if err != nil {
		r.logger.Error("failed to clean up old jobs", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		r.logger.Info("cleaned up old jobs", slog.Int64("deleted", deleted))
	}
}

// staleRecoveryLoop periodically returns jobs abandoned by crashed workers
// to the queue.
func (r *Runner) staleRecoveryLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-r.cfg.LockTimeout)
			recovered, err := r.jobRepo.RecoverStale(r.ctx, cutoff)
			if err != nil {
				r.logger.Error("stale job recovery failed", slog.Any("error", err))
				continue
			}
			if recovered > 0 {
				r.logger.Warn("recovered stale jobs", slog.Int64("count", recovered))
			}
		}
	}
}

// Status describes the current runner state.
type Status struct {
	Running      bool          `json:"running"`
	WorkerCount  int           `json:"worker_count"`
	WorkerID     string        `json:"worker_id"`
	PendingJobs  int64         `json:"pending_jobs"`
	RunningJobs  int64         `json:"running_jobs"`
	PollInterval time.Duration `json:"poll_interval"`
}

// GetStatus returns the current runner status.
func (r *Runner) GetStatus() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	running := r.ctx != nil && r.ctx.Err() == nil

	var pendingCount, runningCount int64
	if running {
		pending, _ := r.jobRepo.GetPending(r.ctx)
		pendingCount = int64(len(pending))
		runningJobs, _ := r.jobRepo.GetRunning(r.ctx)
		runningCount = int64(len(runningJobs))
	}

	return Status{
		Running:      running,
		WorkerCount:  r.cfg.WorkerCount,
		WorkerID:     r.cfg.WorkerID,
		PendingJobs:  pendingCount,
		RunningJobs:  runningCount,
		PollInterval: r.cfg.PollInterval,
	}
}
