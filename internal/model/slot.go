package model

import "time"

// AvailableSlot is an admin-defined window (date, start, end) inside which
// organizers without the always-available flag may schedule events.
type AvailableSlot struct {
	ID          uint64
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Covers reports whether the slot is open and its window contains
// [start, end] on the given date. HH:MM strings compare lexically.
func (s AvailableSlot) Covers(date, start, end string) bool {
	return s.IsAvailable && s.Date == date && s.StartTime <= start && end <= s.EndTime
}
