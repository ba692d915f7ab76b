package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/notify"
	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/internal/service"
)

// apiFixture wires handlers onto a real router the way the server does.
type apiFixture struct {
	router        *chi.Mux
	db            *gorm.DB
	videos        repository.VideoRepository
	variants      repository.QualityVariantRepository
	jobs          repository.JobRepository
	notifications repository.NotificationRepository
	registry      *notify.Registry
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Video{},
		&models.QualityVariant{},
		&models.Job{},
		&models.Notification{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &apiFixture{
		router:        chi.NewRouter(),
		db:            db,
		videos:        repository.NewVideoRepository(db),
		variants:      repository.NewQualityVariantRepository(db),
		jobs:          repository.NewJobRepository(db),
		notifications: repository.NewNotificationRepository(db),
		registry:      notify.NewRegistry(),
	}

	api := humachi.New(f.router, huma.DefaultConfig("vidforge API", "test"))
	videoSvc := service.NewVideoService(f.videos, f.variants, f.jobs, 3, nil)
	NewVideoHandler(videoSvc).Register(api)
	NewJobHandler(f.jobs).Register(api)
	notificationHandler := NewNotificationHandler(f.notifications, f.registry)
	notificationHandler.Register(api)
	notificationHandler.RegisterSSE(f.router)
	NewHealthHandler("test").WithDB(db).Register(api)

	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (f *apiFixture) createVideo(t *testing.T, sourceKey string) models.Video {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/videos", map[string]any{
		"owner_id":   "owner-1",
		"title":      "clip",
		"source_key": sourceKey,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var video models.Video
	decodeBody(t, rec, &video)
	return video
}
