package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/vidforge/vidforge/internal/models"
	"github.com/vidforge/vidforge/internal/notify"
	"github.com/vidforge/vidforge/internal/repository"
)

// NotificationHandler handles notification endpoints, including the SSE
// stream for live delivery.
type NotificationHandler struct {
	repo     repository.NotificationRepository
	registry *notify.Registry
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(repo repository.NotificationRepository, registry *notify.Registry) *NotificationHandler {
	return &NotificationHandler{repo: repo, registry: registry}
}

// ListNotificationsInput filters notifications by user.
type ListNotificationsInput struct {
	UserID     string `query:"user_id" doc:"User to list notifications for" minLength:"1"`
	UnreadOnly bool   `query:"unread_only" doc:"Only return unread notifications"`
}

// ListNotificationsOutput wraps a notification list response.
type ListNotificationsOutput struct {
	Body struct {
		Notifications []*models.Notification `json:"notifications"`
	}
}

// MarkReadInput identifies a notification by path parameter.
type MarkReadInput struct {
	ID string `path:"id" doc:"Notification ID"`
}

// MarkReadOutput is the empty response for marking a notification read.
type MarkReadOutput struct{}

// Register registers the notification REST routes with the API.
func (h *NotificationHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listNotifications",
		Method:      "GET",
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Tags:        []string{"Notifications"},
	}, h.ListNotifications)

	huma.Register(api, huma.Operation{
		OperationID:   "markNotificationRead",
		Method:        "POST",
		Path:          "/api/v1/notifications/{id}/read",
		Summary:       "Mark a notification as read",
		Tags:          []string{"Notifications"},
		DefaultStatus: 204,
	}, h.MarkRead)
}

// RegisterSSE registers the live event stream on the raw router. SSE needs
// direct access to the response writer for flushing, so it bypasses Huma.
func (h *NotificationHandler) RegisterSSE(router chi.Router) {
	router.Get("/events/notifications/{userID}", h.StreamNotifications)
}

// ListNotifications returns a user's notifications, newest first.
func (h *NotificationHandler) ListNotifications(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error) {
	notifications, err := h.repo.GetByUser(ctx, input.UserID, input.UnreadOnly)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list notifications", err)
	}

	out := &ListNotificationsOutput{}
	out.Body.Notifications = notifications
	return out, nil
}

// MarkRead marks a notification as read.
func (h *NotificationHandler) MarkRead(ctx context.Context, input *MarkReadInput) (*MarkReadOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid notification ID")
	}
	if err := h.repo.MarkRead(ctx, id); err != nil {
		return nil, huma.Error500InternalServerError("failed to mark notification read", err)
	}
	return &MarkReadOutput{}, nil
}

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// StreamNotifications streams a user's notifications as server-sent events.
func (h *NotificationHandler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	// ResponseController reaches the real writer through middleware wrappers.
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	events, cancel := h.registry.Subscribe(userID)
	defer cancel()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		case n, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
