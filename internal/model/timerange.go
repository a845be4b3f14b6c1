package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ClockLayout is the HH:MM format used by slots and time ranges.
const ClockLayout = "15:04"

// ValidClock reports whether s is a 24h HH:MM value.
func ValidClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

var clockPattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)

// ParseTimeRange extracts the start and end clock values from a free-text
// time range such as "14:00-16:00", "14:00~16:00" or "19:00 - 21:30 (KST)".
// The first clock value is the start and the last is the end; both come
// back as HH:MM. ok is false when fewer than two clock values appear or the
// start does not precede the end.
func ParseTimeRange(s string) (start, end string, ok bool) {
	m := clockPattern.FindAllStringSubmatch(s, -1)
	if len(m) < 2 {
		return "", "", false
	}
	start, end = clockOf(m[0]), clockOf(m[len(m)-1])
	if start >= end {
		return "", "", false
	}
	return start, end, true
}

func clockOf(match []string) string {
	h, _ := strconv.Atoi(match[1])
	return fmt.Sprintf("%02d:%s", h, match[2])
}

// ClockOf formats the wall-clock part of t as HH:MM.
func ClockOf(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
