package models

import "gorm.io/gorm"

// QualityVariant represents one encoded rendition of a video.
// Variants are keyed by (video_id, quality) so re-running a transcode
// overwrites rather than duplicates.
type QualityVariant struct {
	BaseModel

	// VideoID references the owning video.
	VideoID ULID `gorm:"not null;type:varchar(26);uniqueIndex:idx_variant_video_quality" json:"video_id"`

	// Quality is the rendition label, e.g. "720p".
	Quality string `gorm:"not null;size:16;uniqueIndex:idx_variant_video_quality" json:"quality"`

	// URL is the playback URL of the rendition.
	URL string `gorm:"size:1024" json:"url"`

	// StorageKey is the object-store key of the rendition file.
	StorageKey string `gorm:"size:1024" json:"storage_key"`

	// Size is the rendition file size in bytes.
	Size int64 `json:"size"`

	// Width and Height are the output dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// BitrateKbps is the target video bitrate in kilobits per second.
	BitrateKbps int `json:"bitrate_kbps"`
}

// TableName returns the table name for QualityVariant.
func (QualityVariant) TableName() string {
	return "quality_variants"
}

// Validate performs basic validation on the variant.
func (q *QualityVariant) Validate() error {
	if q.VideoID.IsZero() {
		return ErrVariantVideoRequired
	}
	if q.Quality == "" {
		return ErrVariantQualityRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the variant and generates its ULID.
func (q *QualityVariant) BeforeCreate(tx *gorm.DB) error {
	if err := q.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return q.Validate()
}
