package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Bookable slots start on half-hour boundaries only.
var halfHourPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):(00|30)$`)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const DateLayout = "2006-01-02"

// ParseClock converts an "HH:MM" wall-clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsHalfHourSlot reports whether s is a well-formed slot start time:
// hour 00-23 with minutes exactly 00 or 30.
func IsHalfHourSlot(s string) bool {
	return halfHourPattern.MatchString(s)
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date format: %s", s)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", s)
	}
	return d, nil
}
