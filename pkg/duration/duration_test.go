package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"4h", 4 * time.Hour},
		{"1d", Day},
		{"7d", 7 * Day},
		{"2w", 2 * Week},
		{"1d12h", Day + 12*time.Hour},
		{"1w2d3h", Week + 2*Day + 3*time.Hour},
		{"-1d", -Day},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "d", "xd", "1.5x"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Minute, "1h30m"},
		{36 * time.Hour, "1d12h"},
		{Week + Day, "1w1d"},
		{1500 * time.Millisecond, "1s500ms"},
		{-36 * time.Hour, "-1d12h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}
