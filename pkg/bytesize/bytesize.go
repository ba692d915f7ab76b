// Package bytesize provides human-readable byte size parsing and formatting
// using binary (1024) units.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// Size represents a byte count.
type Size int64

// Binary size constants.
const (
	B  Size = 1
	KB Size = 1024 * B
	MB Size = 1024 * KB
	GB Size = 1024 * MB
	TB Size = 1024 * GB
)

// Parse parses a human-readable size string such as "500KB", "1.5 GB" or
// "8192". A bare number is taken as bytes. Units are case-insensitive and
// accept both short ("K", "KB") and IEC ("KiB") spellings.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("bytesize: empty string")
	}

	// Split the numeric prefix from the unit suffix.
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	numStr := s[:i]
	unit := strings.ToLower(strings.TrimSpace(s[i:]))

	value, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: invalid size %q: %w", s, err)
	}

	var mult Size
	switch unit {
	case "", "b":
		mult = B
	case "k", "kb", "kib":
		mult = KB
	case "m", "mb", "mib":
		mult = MB
	case "g", "gb", "gib":
		mult = GB
	case "t", "tb", "tib":
		mult = TB
	default:
		return 0, fmt.Errorf("bytesize: unknown unit %q", unit)
	}

	return Size(value * float64(mult)), nil
}

// Bytes returns the size as an int64 byte count.
func (s Size) Bytes() int64 { return int64(s) }

// String formats the size with the largest unit that keeps the value >= 1.
func (s Size) String() string {
	if s == 0 {
		return "0B"
	}
	neg := ""
	if s < 0 {
		neg, s = "-", -s
	}
	switch {
	case s >= TB:
		return neg + trim(float64(s)/float64(TB)) + "TB"
	case s >= GB:
		return neg + trim(float64(s)/float64(GB)) + "GB"
	case s >= MB:
		return neg + trim(float64(s)/float64(MB)) + "MB"
	case s >= KB:
		return neg + trim(float64(s)/float64(KB)) + "KB"
	default:
		return fmt.Sprintf("%s%dB", neg, int64(s))
	}
}

func trim(v float64) string {
	out := strconv.FormatFloat(v, 'f', 2, 64)
	out = strings.TrimRight(out, "0")
	return strings.TrimRight(out, ".")
}
