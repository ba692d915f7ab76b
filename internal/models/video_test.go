package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoValidate(t *testing.T) {
	assert.ErrorIs(t, (&Video{}).Validate(), ErrVideoOwnerRequired)
	assert.ErrorIs(t, (&Video{OwnerID: "u", TranscodingProgress: 101}).Validate(), ErrInvalidProgress)
	assert.ErrorIs(t, (&Video{OwnerID: "u", TranscodingProgress: -1}).Validate(), ErrInvalidProgress)
	assert.NoError(t, (&Video{OwnerID: "u", TranscodingProgress: 100}).Validate())
}

func TestVideoIsTerminal(t *testing.T) {
	tests := []struct {
		status TranscodingStatus
		want   bool
	}{
		{TranscodingStatusPending, false},
		{TranscodingStatusProcessing, false},
		{TranscodingStatusCompleted, true},
		{TranscodingStatusFailed, true},
	}
	for _, tt := range tests {
		v := &Video{TranscodingStatus: tt.status}
		assert.Equal(t, tt.want, v.IsTerminal(), string(tt.status))
	}
}

func TestVariantValidate(t *testing.T) {
	assert.ErrorIs(t, (&QualityVariant{Quality: "720p"}).Validate(), ErrVariantVideoRequired)
	assert.ErrorIs(t, (&QualityVariant{VideoID: NewULID()}).Validate(), ErrVariantQualityRequired)
	assert.NoError(t, (&QualityVariant{VideoID: NewULID(), Quality: "720p"}).Validate())
}
