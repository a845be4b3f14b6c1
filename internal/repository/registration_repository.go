package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// RegistrationRepo manages the (event, participant) join rows.
type RegistrationRepo struct{ DB *sql.DB }

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{DB: db} }

// Create inserts a registration. The unique (event_id, participant_id) key
// turns a concurrent duplicate into ErrDuplicate.
func (r *RegistrationRepo) Create(ctx context.Context, eventID, participantID uint64, now time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO registrations (event_id, participant_id, created_at) VALUES (?,?,?)",
		eventID, participantID, now.UTC())
	if err != nil {
		return 0, mapError(err)
	}
	return lastID(res)
}

// Exists reports whether the participant is registered for the event.
func (r *RegistrationRepo) Exists(ctx context.Context, eventID, participantID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM registrations WHERE event_id=? AND participant_id=? LIMIT 1",
		eventID, participantID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ExistsForUser reports whether any participant linked to userID is
// registered for the event.
func (r *RegistrationRepo) ExistsForUser(ctx context.Context, eventID, userID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM registrations rg
	JOIN participants p ON p.id = rg.participant_id
	WHERE rg.event_id=? AND p.user_id=? LIMIT 1`, eventID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Delete removes one registration. ErrNotFound when none existed.
func (r *RegistrationRepo) Delete(ctx context.Context, eventID, participantID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM registrations WHERE event_id=? AND participant_id=?", eventID, participantID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

// DeleteForUser removes the registrations of every participant linked to
// userID for the event. ErrNotFound when none existed.
func (r *RegistrationRepo) DeleteForUser(ctx context.Context, eventID, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM registrations WHERE event_id=? AND participant_id IN (SELECT id FROM participants WHERE user_id=?)",
		eventID, userID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

// DeleteByEventTx removes every registration of the event.
func (r *RegistrationRepo) DeleteByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM registrations WHERE event_id=?", eventID)
	return mapError(err)
}

// CountByEvent returns the current number of registrations.
func (r *RegistrationRepo) CountByEvent(ctx context.Context, eventID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM registrations WHERE event_id=?", eventID).Scan(&n)
	return n, err
}

// ListByEvent returns the registrations of an event with their participant
// and, when linked, the user account, oldest first.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.RegistrationDetail, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT rg.id, rg.event_id, rg.participant_id, rg.created_at, "+participantColumns+`,
	u.id, u.name, u.email, u.role, u.login_method
	FROM registrations rg
	JOIN participants p ON p.id = rg.participant_id
	LEFT JOIN users u ON u.id = p.user_id
	WHERE rg.event_id=?
	ORDER BY rg.created_at, rg.id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RegistrationDetail, 0)
	for rows.Next() {
		var (
			d                          model.RegistrationDetail
			puid, uid                  sql.NullInt64
			uname, uemail, urole, ulog sql.NullString
		)
		dest := []any{&d.ID, &d.EventID, &d.ParticipantID, &d.CreatedAt}
		dest = append(dest, participantDest(&d.Participant, &puid)...)
		dest = append(dest, &uid, &uname, &uemail, &urole, &ulog)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		d.Participant.UserID = nullableID(puid)
		if uid.Valid {
			d.User = &model.LinkedUser{
				ID:          uint64(uid.Int64),
				Name:        uname.String,
				Email:       uemail.String,
				Role:        model.Role(urole.String),
				LoginMethod: ulog.String,
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
