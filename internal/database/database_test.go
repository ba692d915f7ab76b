package database

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/vidforge/vidforge/internal/config"
)

func newTestConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	}
}

func TestNewSQLite(t *testing.T) {
	db, err := New(newTestConfig(t), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate())
	assert.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, "sqlite", db.Driver())
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(config.DatabaseConfig{Driver: "oracle"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSQLiteDSNPragmas(t *testing.T) {
	cfg := newTestConfig(t)

	dialector, err := getDialector(cfg)
	require.NoError(t, err)

	// The pure Go driver applies PRAGMAs per connection via DSN parameters.
	sq, ok := dialector.(*sqlite.Dialector)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(sq.DSN, cfg.DSN+"?"))
	assert.Contains(t, sq.DSN, "_pragma=journal_mode(WAL)")
	assert.Contains(t, sq.DSN, "_pragma=busy_timeout(30000)")
	assert.Contains(t, sq.DSN, "_pragma=foreign_keys(ON)")
}

func TestSQLiteDSNPragmasAppendToExistingQuery(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.DSN += "?cache=shared"

	dialector, err := getDialector(cfg)
	require.NoError(t, err)

	sq, ok := dialector.(*sqlite.Dialector)
	require.True(t, ok)
	assert.Contains(t, sq.DSN, "?cache=shared&_pragma=")
	assert.Equal(t, 1, strings.Count(sq.DSN, "?"))
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateSQL(short))

	long := strings.Repeat("x", maxSQLLogLength+10)
	got := truncateSQL(long)
	assert.Len(t, got, maxSQLLogLength+len("... (truncated)"))
	assert.True(t, strings.HasSuffix(got, "... (truncated)"))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel("warn"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
