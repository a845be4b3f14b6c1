package model

import "time"

// Participant is the contact record a registration points at. UserID links
// it to an account when the registrant was logged in.
type Participant struct {
	ID        uint64
	UserID    *uint64
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration joins an event and a participant. The pair is unique.
type Registration struct {
	ID            uint64
	EventID       uint64
	ParticipantID uint64
	CreatedAt     time.Time
}

// LinkedUser is the subset of the users row shown next to a participant that
// carries a user id.
type LinkedUser struct {
	ID          uint64
	Name        string
	Email       string
	Role        Role
	LoginMethod string
}

// RegistrationDetail is one row of an event's participant list.
type RegistrationDetail struct {
	Registration
	Participant Participant
	User        *LinkedUser
}
