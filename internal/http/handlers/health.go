// Package handlers provides HTTP API handlers for vidforge.
package handlers

import (
	"context"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"gorm.io/gorm"

	"github.com/vidforge/vidforge/internal/scheduler"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	version   string
	startTime time.Time
	db        *gorm.DB
	runner    *scheduler.Runner
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB sets the database connection for health checks.
func (h *HealthHandler) WithDB(db *gorm.DB) *HealthHandler {
	h.db = db
	return h
}

// WithRunner sets the job runner for worker status reporting.
func (h *HealthHandler) WithRunner(runner *scheduler.Runner) *HealthHandler {
	h.runner = runner
	return h
}

// CPUInfo describes system load.
type CPUInfo struct {
	Cores     int     `json:"cores"`
	Load1Min  float64 `json:"load_1min"`
	Load5Min  float64 `json:"load_5min"`
	Load15Min float64 `json:"load_15min"`
}

// MemoryInfo describes system memory usage in megabytes.
type MemoryInfo struct {
	TotalMB     float64 `json:"total_mb"`
	UsedMB      float64 `json:"used_mb"`
	AvailableMB float64 `json:"available_mb"`
}

// DatabaseHealth describes database connectivity.
type DatabaseHealth struct {
	Status         string  `json:"status"`
	ResponseTimeMS float64 `json:"response_time_ms"`
}

// WorkerHealth describes the job runner state.
type WorkerHealth struct {
	Running     bool  `json:"running"`
	WorkerCount int   `json:"worker_count"`
	PendingJobs int64 `json:"pending_jobs"`
	RunningJobs int64 `json:"running_jobs"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	CPU       CPUInfo        `json:"cpu"`
	Memory    MemoryInfo     `json:"memory"`
	Database  DatabaseHealth `json:"database"`
	Workers   WorkerHealth   `json:"workers"`
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body HealthResponse
}

// Register registers the health routes with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service including system metrics",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth returns the health status of the service.
func (h *HealthHandler) GetHealth(ctx context.Context, input *HealthInput) (*HealthOutput, error) {
	now := time.Now()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    now.Sub(h.startTime).Round(time.Second).String(),
		CPU:       h.getCPUInfo(),
		Memory:    h.getMemoryInfo(),
		Database:  h.getDatabaseHealth(ctx),
	}

	if h.runner != nil {
		status := h.runner.GetStatus()
		resp.Workers = WorkerHealth{
			Running:     status.Running,
			WorkerCount: status.WorkerCount,
			PendingJobs: status.PendingJobs,
			RunningJobs: status.RunningJobs,
		}
	}

	if resp.Database.Status == "error" {
		resp.Status = "degraded"
	}

	return &HealthOutput{Body: resp}, nil
}

func (h *HealthHandler) getCPUInfo() CPUInfo {
	info := CPUInfo{Cores: runtime.NumCPU()}

	if loadAvg, err := load.Avg(); err == nil && loadAvg != nil {
		info.Load1Min = loadAvg.Load1
		info.Load5Min = loadAvg.Load5
		info.Load15Min = loadAvg.Load15
	}
	return info
}

func (h *HealthHandler) getMemoryInfo() MemoryInfo {
	info := MemoryInfo{}

	if vmStat, err := mem.VirtualMemory(); err == nil && vmStat != nil {
		info.TotalMB = float64(vmStat.Total) / 1024 / 1024
		info.UsedMB = float64(vmStat.Used) / 1024 / 1024
		info.AvailableMB = float64(vmStat.Available) / 1024 / 1024
	}
	return info
}

func (h *HealthHandler) getDatabaseHealth(ctx context.Context) DatabaseHealth {
	health := DatabaseHealth{Status: "ok"}

	if h.db == nil {
		health.Status = "unknown"
		return health
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		health.Status = "error"
		return health
	}

	start := time.Now()
	err = sqlDB.PingContext(ctx)
	health.ResponseTimeMS = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		health.Status = "error"
	}
	return health
}
