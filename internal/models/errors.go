package models

import "errors"

// Validation errors returned by model hooks.
var (
	// ErrJobTypeRequired is returned when a job has no type.
	ErrJobTypeRequired = errors.New("job type is required")

	// ErrVideoOwnerRequired is returned when a video has no owner.
	ErrVideoOwnerRequired = errors.New("video owner is required")

	// ErrVariantQualityRequired is returned when a quality variant has no quality label.
	ErrVariantQualityRequired = errors.New("variant quality is required")

	// ErrVariantVideoRequired is returned when a quality variant has no video reference.
	ErrVariantVideoRequired = errors.New("variant video is required")

	// ErrNotificationUserRequired is returned when a notification has no recipient.
	ErrNotificationUserRequired = errors.New("notification user is required")

	// ErrInvalidProgress is returned when transcoding progress is outside 0-100.
	ErrInvalidProgress = errors.New("transcoding progress must be between 0 and 100")
)
