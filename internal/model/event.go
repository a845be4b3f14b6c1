package model

import (
	"strings"
	"time"
)

// ApprovalStatus is the admin gate for public visibility.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is one of the known approval values.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// EventStage is the lifecycle stage of an event. It is independent of the
// approval status.
type EventStage string

const (
	StageProposal  EventStage = "proposal"
	StageScheduled EventStage = "scheduled"
	StageConfirmed EventStage = "confirmed"
)

// Valid reports whether s is one of the known stages.
func (s EventStage) Valid() bool {
	switch s {
	case StageProposal, StageScheduled, StageConfirmed:
		return true
	}
	return false
}

// DateLayout is the storage format of Event.Date and AvailableSlot.Date.
const DateLayout = "2006-01-02"

// Event mirrors the `events` table. Date and TimeRange are kept as the
// strings the organizer entered ("2025-12-10", "14:00-16:00").
type Event struct {
	ID              uint64
	OrganizerID     uint64
	Title           string
	Description     string
	Keywords        string
	InstructorName  string
	Fee             int64
	Date            string
	TimeRange       string
	MinParticipants int
	MaxParticipants int
	Stage           EventStage
	Approval        ApprovalStatus
	MaterialURL     string
	MaterialContent string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsProposal is the legacy single-flag view of the stage.
func (e Event) IsProposal() bool { return e.Stage == StageProposal }

// IsConfirmed is the legacy single-flag view of the stage.
func (e Event) IsConfirmed() bool { return e.Stage == StageConfirmed }

// IsPublic reports whether the event may be listed to anonymous callers.
func (e Event) IsPublic() bool { return e.Approval == ApprovalApproved }

// IsCompleted reports whether the event has finished at now. Events dated
// before today are complete; events dated today are complete once the end of
// their time range has passed. Events without a parseable date never complete.
func (e Event) IsCompleted(now time.Time) bool {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(e.Date), now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return true
	}
	if !day.Equal(today) {
		return false
	}
	_, end, ok := ParseTimeRange(e.TimeRange)
	if !ok {
		return false
	}
	return ClockOf(now) >= end
}

// EventSummary decorates an event with the data list endpoints show.
type EventSummary struct {
	Event
	RegistrationCount int
	OrganizerName     string
}
