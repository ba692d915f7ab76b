// Package duration extends time.ParseDuration with day and week units and
// provides compact humanized formatting for log output.
package duration

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Day represents 24 hours.
	Day = 24 * time.Hour
	// Week represents 7 days.
	Week = 7 * Day
)

// Parse parses a duration string. In addition to the units accepted by
// time.ParseDuration it understands "d" (days) and "w" (weeks), so values
// like "7d", "2w" and "1d12h" are valid.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration: empty string")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var total time.Duration
	rest := s
	for {
		i := strings.IndexAny(rest, "dw")
		if i < 0 {
			break
		}
		// Days/weeks only take integer counts; "1.5d" is rejected by
		// the ParseDuration call below via the leftover fragment.
		var n int64
		var unit byte
		j := i
		for j > 0 && rest[j-1] >= '0' && rest[j-1] <= '9' {
			j--
		}
		if j == i {
			return 0, fmt.Errorf("duration: invalid value %q", s)
		}
		if _, err := fmt.Sscanf(rest[j:i+1], "%d%c", &n, &unit); err != nil {
			return 0, fmt.Errorf("duration: invalid value %q", s)
		}
		switch unit {
		case 'd':
			total += time.Duration(n) * Day
		case 'w':
			total += time.Duration(n) * Week
		}
		rest = rest[:j] + rest[i+1:]
	}

	if rest != "" {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("duration: %w", err)
		}
		total += d
	}

	if neg {
		total = -total
	}
	return total, nil
}

// Format renders a duration with its largest units first, dropping zero
// components: 90 minutes becomes "1h30m", 36 hours becomes "1d12h".
func Format(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	neg := ""
	if d < 0 {
		neg, d = "-", -d
	}

	var b strings.Builder
	for _, u := range []struct {
		d    time.Duration
		name string
	}{
		{Week, "w"}, {Day, "d"}, {time.Hour, "h"},
		{time.Minute, "m"}, {time.Second, "s"}, {time.Millisecond, "ms"},
	} {
		if n := d / u.d; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.name)
			d -= n * u.d
		}
	}
	if b.Len() == 0 {
		return neg + d.String()
	}
	return neg + b.String()
}
