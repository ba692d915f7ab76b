package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vidforge/vidforge/internal/config"
	"github.com/vidforge/vidforge/internal/database"
	"github.com/vidforge/vidforge/internal/ffmpeg"
	internalhttp "github.com/vidforge/vidforge/internal/http"
	"github.com/vidforge/vidforge/internal/http/handlers"
	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/notify"
	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/internal/scheduler"
	"github.com/vidforge/vidforge/internal/service"
	"github.com/vidforge/vidforge/internal/startup"
	"github.com/vidforge/vidforge/internal/storage"
	"github.com/vidforge/vidforge/internal/transcode"
	"github.com/vidforge/vidforge/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vidforge server",
	Long: `Start the vidforge HTTP server and transcode workers.

The server provides:
- REST API for creating videos and tracking transcoding status
- Server-sent event stream for live notifications
- Health check endpoint
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("database", "vidforge.db", "Database DSN")
	serveCmd.Flags().String("data-dir", "./data", "Object store base directory")
	serveCmd.Flags().Int("workers", 2, "Number of transcode workers")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("database.dsn", serveCmd.Flags().Lookup("database"))
	_ = viper.BindPFlag("storage.base_dir", serveCmd.Flags().Lookup("data-dir"))
	_ = viper.BindPFlag("worker.count", serveCmd.Flags().Lookup("workers"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger.Info("starting vidforge", slog.String("version", version.String()))

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	videoRepo := repository.NewVideoRepository(db.DB)
	variantRepo := repository.NewQualityVariantRepository(db.DB)
	jobRepo := repository.NewJobRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	store, err := storage.NewFileStore(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL, logger)
	if err != nil {
		return fmt.Errorf("initializing object store: %w", err)
	}

	binaries, err := ffmpeg.ResolveBinaries(cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath)
	if err != nil {
		return fmt.Errorf("resolving ffmpeg binaries: %w", err)
	}
	logger.Info("ffmpeg resolved",
		slog.String("ffmpeg", binaries.FFmpeg),
		slog.String("ffprobe", binaries.FFprobe))

	prober := ffmpeg.NewProber(binaries.FFprobe, cfg.FFmpeg.ProbeTimeout, logger)
	encoder := ffmpeg.NewEncoder(binaries.FFmpeg, cfg.FFmpeg.EncodeTimeout, logger)

	notifier := notify.NewService(notificationRepo, notify.NewRegistry(), logger)

	orchestrator := transcode.NewOrchestrator(
		videoRepo, variantRepo, store, prober, encoder, notifier,
		transcode.Options{
			Ladder:           ladderFromConfig(cfg.Transcoding.Ladder),
			AudioBitrateKbps: cfg.Transcoding.AudioBitrateKbps,
			Preset:           cfg.Transcoding.Preset,
			WorkspaceRoot:    cfg.Storage.WorkspaceRoot(),
		},
		logger,
	)

	// Recover state left by a previous process before workers start.
	startup.NewCleanup(videoRepo, jobRepo, cfg.Storage.WorkspaceRoot(), cfg.Maintenance.WorkspaceMaxAge, logger).
		Run(cmd.Context())

	executor := scheduler.NewExecutor(jobRepo).WithLogger(logger)
	executor.RegisterHandler(models.JobTypeVideoTranscode,
		scheduler.NewTranscodeHandler(orchestrator).WithLogger(logger))

	runner := scheduler.NewRunner(jobRepo, executor).
		WithLogger(logger).
		WithConfig(scheduler.RunnerConfig{
			WorkerCount:     cfg.Worker.Count,
			PollInterval:    cfg.Worker.PollInterval,
			LockTimeout:     cfg.Worker.LockTimeout,
			JobTimeout:      cfg.Worker.JobTimeout,
			MaintenanceCron: cfg.Maintenance.Cron,
			JobRetention:    cfg.Maintenance.JobRetention,
		})

	videoService := service.NewVideoService(videoRepo, variantRepo, jobRepo, cfg.Worker.MaxAttempts, logger)

	server := internalhttp.NewServer(internalhttp.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
	}, logger, version.Short())

	handlers.NewHealthHandler(version.Short()).WithDB(db.DB).WithRunner(runner).Register(server.API())
	handlers.NewVideoHandler(videoService).Register(server.API())
	handlers.NewJobHandler(jobRepo).Register(server.API())
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, notifier.Registry())
	notificationHandler.Register(server.API())
	notificationHandler.RegisterSSE(server.Router())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("starting runner: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			runner.Stop()
			return err
		}
	}

	// Workers stop first so in-flight jobs finish and release their locks
	// before the process exits.
	runner.Stop()

	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}

// ladderFromConfig converts configured rendition entries into descriptors.
// An empty configuration keeps the built-in ladder.
func ladderFromConfig(entries []config.RenditionConfig) []transcode.Descriptor {
	if len(entries) == 0 {
		return nil
	}
	ladder := make([]transcode.Descriptor, 0, len(entries))
	for _, e := range entries {
		ladder = append(ladder, transcode.Descriptor{
			Name:        e.Name,
			Width:       e.Width,
			Height:      e.Height,
			BitrateKbps: e.BitrateKbps,
		})
	}
	return ladder
}
