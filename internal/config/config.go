// Package config provides configuration management for vidforge using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vidforge/vidforge/pkg/bytesize"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultProbeTimeout    = 30 * time.Second
	defaultEncodeTimeout   = 2 * time.Hour
	defaultWorkerCount     = 2
	defaultPollInterval    = 5 * time.Second
	defaultJobTimeout      = 4 * time.Hour
	defaultLockTimeout     = 30 * time.Minute
	defaultMaxAttempts     = 3
	defaultRetryBackoff    = time.Minute
	defaultJobRetention    = 7 * 24 * time.Hour
	defaultWorkspaceMaxAge = time.Hour
	defaultMaxSourceSize   = 8 * bytesize.GB
	defaultAudioBitrate    = 128
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	FFmpeg      FFmpegConfig      `mapstructure:"ffmpeg"`
	Transcoding TranscodingConfig `mapstructure:"transcoding"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// StorageConfig holds object store and scratch workspace configuration.
type StorageConfig struct {
	// BaseDir is the root of the filesystem-backed object store.
	BaseDir string `mapstructure:"base_dir"`
	// PublicBaseURL is prepended to object keys when building playback URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
	// TempDir is where per-job scratch workspaces are created.
	// Empty means the system temp directory.
	TempDir string `mapstructure:"temp_dir"`
	// MaxSourceSize is the maximum accepted source file size.
	// Supports human-readable values like "8GB" or raw byte counts.
	MaxSourceSize bytesize.Size `mapstructure:"max_source_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// FFmpegConfig holds FFmpeg binary configuration.
type FFmpegConfig struct {
	BinaryPath    string        `mapstructure:"binary_path"` // Path to ffmpeg binary (empty = auto-detect)
	ProbePath     string        `mapstructure:"probe_path"`  // Path to ffprobe binary (empty = auto-detect)
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	EncodeTimeout time.Duration `mapstructure:"encode_timeout"`
}

// RenditionConfig describes one candidate output rendition.
type RenditionConfig struct {
	Name        string `mapstructure:"name"`
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	BitrateKbps int    `mapstructure:"bitrate_kbps"`
}

// TranscodingConfig holds transcoding pipeline configuration.
type TranscodingConfig struct {
	// Ladder is the candidate rendition set. Empty means the built-in
	// 360p/720p/1080p ladder.
	Ladder []RenditionConfig `mapstructure:"ladder"`
	// AudioBitrateKbps is the AAC audio bitrate applied to every rendition.
	AudioBitrateKbps int `mapstructure:"audio_bitrate_kbps"`
	// Preset is the x264 encoder preset.
	Preset string `mapstructure:"preset"`
}

// WorkerConfig holds job worker pool configuration.
type WorkerConfig struct {
	Count        int           `mapstructure:"count"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	JobTimeout   time.Duration `mapstructure:"job_timeout"`
	LockTimeout  time.Duration `mapstructure:"lock_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// MaintenanceConfig holds background maintenance configuration.
type MaintenanceConfig struct {
	// Cron is a 5-field cron expression for the maintenance sweep
	// (old job cleanup and orphaned workspace removal).
	Cron string `mapstructure:"cron"`
	// JobRetention is how long finished jobs are kept.
	JobRetention time.Duration `mapstructure:"job_retention"`
	// WorkspaceMaxAge is the age after which an orphaned scratch
	// workspace is considered abandoned and removed.
	WorkspaceMaxAge time.Duration `mapstructure:"workspace_max_age"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with VIDFORGE_ and use underscores
// for nesting. Example: VIDFORGE_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vidforge")
		v.AddConfigPath("$HOME/.vidforge")
	}

	v.SetEnvPrefix("VIDFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file so defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "vidforge.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Storage defaults
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.temp_dir", "")
	v.SetDefault("storage.max_source_size", int64(defaultMaxSourceSize))

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// FFmpeg defaults
	v.SetDefault("ffmpeg.binary_path", "")
	v.SetDefault("ffmpeg.probe_path", "")
	v.SetDefault("ffmpeg.probe_timeout", defaultProbeTimeout)
	v.SetDefault("ffmpeg.encode_timeout", defaultEncodeTimeout)

	// Transcoding defaults
	v.SetDefault("transcoding.audio_bitrate_kbps", defaultAudioBitrate)
	v.SetDefault("transcoding.preset", "medium")

	// Worker defaults
	v.SetDefault("worker.count", defaultWorkerCount)
	v.SetDefault("worker.poll_interval", defaultPollInterval)
	v.SetDefault("worker.job_timeout", defaultJobTimeout)
	v.SetDefault("worker.lock_timeout", defaultLockTimeout)
	v.SetDefault("worker.max_attempts", defaultMaxAttempts)
	v.SetDefault("worker.retry_backoff", defaultRetryBackoff)

	// Maintenance defaults
	v.SetDefault("maintenance.cron", "0 3 * * *") // daily at 3 AM
	v.SetDefault("maintenance.job_retention", defaultJobRetention)
	v.SetDefault("maintenance.workspace_max_age", defaultWorkspaceMaxAge)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker.count must be at least 1")
	}
	if c.Worker.MaxAttempts < 1 {
		return fmt.Errorf("worker.max_attempts must be at least 1")
	}

	for i, r := range c.Transcoding.Ladder {
		if r.Name == "" {
			return fmt.Errorf("transcoding.ladder[%d].name is required", i)
		}
		if r.Width < 1 || r.Height < 1 {
			return fmt.Errorf("transcoding.ladder[%d] dimensions must be positive", i)
		}
		if r.BitrateKbps < 1 {
			return fmt.Errorf("transcoding.ladder[%d].bitrate_kbps must be positive", i)
		}
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WorkspaceRoot returns the directory under which scratch workspaces live.
func (c *StorageConfig) WorkspaceRoot() string {
	if c.TempDir != "" {
		return c.TempDir
	}
	return os.TempDir()
}
