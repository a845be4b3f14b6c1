package model

import "time"

// Review is a user's rating of an event they attended. One per
// (user, event).
type Review struct {
	ID           uint64
	EventID      uint64
	UserID       uint64
	Content      string
	Rating       int
	CreatedAt    time.Time
	ReviewerName string // joined from users.name on reads
}

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)
