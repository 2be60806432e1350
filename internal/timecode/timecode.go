// Package timecode converts subtitle-style span timestamps ("HH:MM:SS,mmm")
// to durations and back.
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid reports a timestamp that does not match HH:MM:SS[,mmm].
var ErrInvalid = errors.New("invalid timestamp")

// MaxHours bounds the hour field so every accepted timestamp fits in a
// time.Duration.
const MaxHours = 99999

// Parse converts "HH:MM:SS,mmm" (a '.' separator is accepted as well) into a duration.
func Parse(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}

	clock, frac := raw, ""
	if idx := strings.IndexAny(raw, ",."); idx >= 0 {
		clock, frac = raw[:idx], raw[idx+1:]
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, value)
	}
	hours, err := parseField(parts[0], MaxHours)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, value)
	}
	minutes, err := parseField(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, value)
	}
	seconds, err := parseField(parts[2], 59)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, value)
	}

	millis := 0
	if frac != "" {
		if len(frac) > 3 {
			frac = frac[:3]
		}
		for len(frac) < 3 {
			frac += "0"
		}
		if millis, err = parseField(frac, 999); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, value)
		}
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

func parseField(value string, max int) (int, error) {
	if value == "" {
		return 0, ErrInvalid
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > max {
		return 0, ErrInvalid
	}
	return n, nil
}

// Format renders d as "HH:MM:SS,mmm".
func Format(d time.Duration) string {
	return format(d, ',')
}

// FFmpeg renders d as "HH:MM:SS.mmm", the form accepted by -ss and -t.
func FFmpeg(d time.Duration) string {
	return format(d, '.')
}

func format(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

// Seconds formats a duration as seconds with millisecond precision, e.g. "4.250".
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
