package service

import (
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

const (
	maskRune        = '*'
	unknownNameMask = "Unknown"
)

// MaskName keeps the first and last character of name and masks the rest.
// Two character names keep only the first. Counting is by rune.
func MaskName(name string) string {
	r := []rune(name)
	switch n := len(r); {
	case n == 0:
		return unknownNameMask
	case n == 1:
		return name
	case n == 2:
		return string([]rune{r[0], maskRune})
	default:
		out := make([]rune, n)
		out[0] = r[0]
		for i := 1; i < n-1; i++ {
			out[i] = maskRune
		}
		out[n-1] = r[n-1]
		return string(out)
	}
}

// Scope names which projection of a participant list was produced.
type Scope string

const (
	ScopeAdmin     Scope = "admin"
	ScopeOrganizer Scope = "organizer"
	ScopePublic    Scope = "public"
)

// ParticipantRecord is one entry of a projected participant list. Empty
// strings and a nil User mean the field was withheld.
type ParticipantRecord struct {
	RegistrationID uint64
	ParticipantID  uint64
	RegisteredAt   time.Time
	Name           string
	Email          string
	Phone          string
	User           *model.LinkedUser
}

// ParticipantList is the result of ListParticipants.
type ParticipantList struct {
	Scope   Scope
	Records []ParticipantRecord
}

func scopeFor(p Principal, authenticated bool, e model.Event) Scope {
	switch {
	case authenticated && p.IsAdmin():
		return ScopeAdmin
	case authenticated && p.UserID == e.OrganizerID:
		return ScopeOrganizer
	default:
		return ScopePublic
	}
}

// project builds the records for scope. The input rows are not modified.
func project(scope Scope, rows []model.RegistrationDetail) []ParticipantRecord {
	out := make([]ParticipantRecord, 0, len(rows))
	for _, d := range rows {
		rec := ParticipantRecord{
			RegistrationID: d.ID,
			ParticipantID:  d.Participant.ID,
			RegisteredAt:   d.CreatedAt,
		}
		switch scope {
		case ScopeAdmin:
			rec.Name = d.Participant.Name
			rec.Email = d.Participant.Email
			rec.Phone = d.Participant.Phone
			rec.User = copyUser(d.User)
		case ScopeOrganizer:
			rec.Name = d.Participant.Name
			rec.Email = d.Participant.Email
			rec.User = copyUser(d.User)
		default:
			rec.Name = MaskName(d.Participant.Name)
		}
		out = append(out, rec)
	}
	return out
}

func copyUser(u *model.LinkedUser) *model.LinkedUser {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
