package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// ParticipantRepo stores contact records that registrations point at.
type ParticipantRepo struct{ DB *sql.DB }

func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{DB: db} }

const participantColumns = "p.id, p.user_id, p.name, p.email, p.phone, p.created_at, p.updated_at"

func participantDest(p *model.Participant, uid *sql.NullInt64) []any {
	return []any{&p.ID, uid, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt}
}

func scanParticipant(s scanner) (model.Participant, error) {
	var (
		p   model.Participant
		uid sql.NullInt64
	)
	if err := s.Scan(participantDest(&p, &uid)...); err != nil {
		return p, err
	}
	p.UserID = nullableID(uid)
	return p, nil
}

func nullableID(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	id := uint64(v.Int64)
	return &id
}

func nullID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// GetByID returns one participant.
func (r *ParticipantRepo) GetByID(ctx context.Context, id uint64) (model.Participant, error) {
	p, err := scanParticipant(r.DB.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants p WHERE p.id=?", id))
	return p, mapError(err)
}

// GetByUserID returns the participant linked to a user. When several exist
// the oldest wins.
func (r *ParticipantRepo) GetByUserID(ctx context.Context, userID uint64) (model.Participant, error) {
	p, err := scanParticipant(r.DB.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants p WHERE p.user_id=? ORDER BY p.id LIMIT 1", userID))
	return p, mapError(err)
}

// GetByEmail returns the participant with the given email.
func (r *ParticipantRepo) GetByEmail(ctx context.Context, email string) (model.Participant, error) {
	p, err := scanParticipant(r.DB.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants p WHERE p.email=? LIMIT 1", email))
	return p, mapError(err)
}

// Create inserts a participant. ErrDuplicate when the email is taken.
func (r *ParticipantRepo) Create(ctx context.Context, p model.Participant) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO participants (user_id, name, email, phone, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		nullID(p.UserID), p.Name, p.Email, p.Phone, p.CreatedAt.UTC(), p.CreatedAt.UTC())
	if err != nil {
		return 0, mapError(err)
	}
	return lastID(res)
}

// Update overwrites the contact fields and user link in place.
func (r *ParticipantRepo) Update(ctx context.Context, p model.Participant, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE participants SET user_id=?, name=?, email=?, phone=?, updated_at=? WHERE id=?",
		nullID(p.UserID), p.Name, p.Email, p.Phone, now.UTC(), p.ID)
	return mapError(err)
}
