package models

import (
	"gorm.io/gorm"
)

// TranscodingStatus represents the lifecycle state of a video's transcoding.
type TranscodingStatus string

const (
	// TranscodingStatusPending indicates the video is waiting to be transcoded.
	TranscodingStatusPending TranscodingStatus = "pending"
	// TranscodingStatusProcessing indicates transcoding is in progress.
	TranscodingStatusProcessing TranscodingStatus = "processing"
	// TranscodingStatusCompleted indicates transcoding finished successfully.
	TranscodingStatusCompleted TranscodingStatus = "completed"
	// TranscodingStatusFailed indicates transcoding failed.
	TranscodingStatusFailed TranscodingStatus = "failed"
)

// Video represents an uploaded video and its transcoding state.
type Video struct {
	BaseModel

	// OwnerID identifies the user who owns this video.
	OwnerID string `gorm:"not null;size:64;index" json:"owner_id"`

	// Title is the display title of the video.
	Title string `gorm:"size:255" json:"title"`

	// SourceKey is the object-store key of the uploaded source file.
	SourceKey string `gorm:"size:1024" json:"source_key"`

	// DurationSeconds is the media duration, persisted after probing.
	DurationSeconds int `json:"duration_seconds"`

	// ManifestURL is the playback URL of the HLS master playlist,
	// set when transcoding completes.
	ManifestURL string `gorm:"size:1024" json:"manifest_url,omitempty"`

	// TranscodingStatus is the current pipeline state.
	TranscodingStatus TranscodingStatus `gorm:"not null;default:'pending';size:20;index" json:"transcoding_status"`

	// TranscodingProgress is the percentage completed, 0-100.
	TranscodingProgress int `gorm:"default:0" json:"transcoding_progress"`

	// TranscodingError holds the failure message when status is failed.
	TranscodingError string `gorm:"size:4096" json:"transcoding_error,omitempty"`

	// Variants are the encoded renditions produced for this video.
	Variants []QualityVariant `gorm:"foreignKey:VideoID" json:"variants,omitempty"`
}

// TableName returns the table name for Video.
func (Video) TableName() string {
	return "videos"
}

// IsTerminal returns true if transcoding has finished, successfully or not.
func (v *Video) IsTerminal() bool {
	return v.TranscodingStatus == TranscodingStatusCompleted ||
		v.TranscodingStatus == TranscodingStatusFailed
}

// Validate performs basic validation on the video.
func (v *Video) Validate() error {
	if v.OwnerID == "" {
		return ErrVideoOwnerRequired
	}
	if v.TranscodingProgress < 0 || v.TranscodingProgress > 100 {
		return ErrInvalidProgress
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the video and generates its ULID.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if err := v.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return v.Validate()
}

// BeforeUpdate is a GORM hook that validates the video before update.
func (v *Video) BeforeUpdate(tx *gorm.DB) error {
	return v.Validate()
}
