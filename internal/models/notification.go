package models

import "gorm.io/gorm"

// NotificationType identifies the kind of event a notification describes.
type NotificationType string

// NotificationTypeVideoTranscoding is emitted when a video's transcoding
// reaches a terminal state.
const NotificationTypeVideoTranscoding NotificationType = "video_transcoding"

// TranscodeOutcome is the terminal result a notification reports.
type TranscodeOutcome string

const (
	// OutcomeCompleted reports a successful transcode.
	OutcomeCompleted TranscodeOutcome = "completed"
	// OutcomeFailed reports a failed transcode.
	OutcomeFailed TranscodeOutcome = "failed"
)

// Notification is a persisted user-facing event.
type Notification struct {
	BaseModel

	// UserID is the recipient.
	UserID string `gorm:"not null;size:64;index" json:"user_id"`

	// Type identifies the event category.
	Type NotificationType `gorm:"not null;size:50" json:"type"`

	// Title is the short headline.
	Title string `gorm:"size:255" json:"title"`

	// Message is the human-readable body.
	Message string `gorm:"size:2048" json:"message"`

	// Link is an optional in-app destination, e.g. "/videos/<id>".
	Link string `gorm:"size:1024" json:"link,omitempty"`

	// VideoID ties transcode notifications to their video, for terminal
	// event deduplication.
	VideoID ULID `gorm:"type:varchar(26);index" json:"video_id,omitempty"`

	// Outcome is the terminal transcode result this notification reports.
	Outcome TranscodeOutcome `gorm:"size:20" json:"outcome,omitempty"`

	// Read marks whether the user has seen the notification.
	Read bool `gorm:"default:false;index" json:"read"`
}

// TableName returns the table name for Notification.
func (Notification) TableName() string {
	return "notifications"
}

// Validate performs basic validation on the notification.
func (n *Notification) Validate() error {
	if n.UserID == "" {
		return ErrNotificationUserRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates and generates the ULID.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if err := n.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return n.Validate()
}
