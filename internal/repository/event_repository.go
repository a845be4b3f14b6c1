package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// EventRepo provides persistence for events.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventColumns = "e.id, e.organizer_id, e.title, e.description, e.keywords, e.instructor_name, e.fee, e.date, e.time_range, " +
	"e.min_participants, e.max_participants, e.event_stage, e.approval_status, e.material_url, e.material_content, e.created_at, e.updated_at"

// summaryColumns appends the registration count and organizer name.
const summaryColumns = eventColumns +
	", (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS registration_count" +
	", COALESCE((SELECT u.name FROM users u WHERE u.id = e.organizer_id), '') AS organizer_name"

func scanEventInto(e *model.Event, extra ...any) []any {
	dest := []any{&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Keywords, &e.InstructorName, &e.Fee, &e.Date, &e.TimeRange,
		&e.MinParticipants, &e.MaxParticipants, (*string)(&e.Stage), (*string)(&e.Approval), &e.MaterialURL, &e.MaterialContent,
		&e.CreatedAt, &e.UpdatedAt}
	return append(dest, extra...)
}

func scanEvent(s scanner) (model.Event, error) {
	var e model.Event
	err := s.Scan(scanEventInto(&e)...)
	return e, err
}

func scanSummary(s scanner) (model.EventSummary, error) {
	var es model.EventSummary
	err := s.Scan(scanEventInto(&es.Event, &es.RegistrationCount, &es.OrganizerName)...)
	return es, err
}

// Create inserts an event and returns its id.
func (r *EventRepo) Create(ctx context.Context, e model.Event) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO events (organizer_id, title, description, keywords, instructor_name, fee, date, time_range,
	min_participants, max_participants, event_stage, approval_status, material_url, material_content, created_at, updated_at)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.OrganizerID, e.Title, e.Description, e.Keywords, e.InstructorName, e.Fee, e.Date, e.TimeRange,
		e.MinParticipants, e.MaxParticipants, string(e.Stage), string(e.Approval), e.MaterialURL, e.MaterialContent,
		e.CreatedAt.UTC(), e.CreatedAt.UTC())
	if err != nil {
		return 0, mapError(err)
	}
	return lastID(res)
}

// GetByID returns the bare event row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events e WHERE e.id=?", id))
	return e, mapError(err)
}

// GetSummary returns the event with its registration count and organizer name.
func (r *EventRepo) GetSummary(ctx context.Context, id uint64) (model.EventSummary, error) {
	es, err := scanSummary(r.DB.QueryRowContext(ctx,
		"SELECT "+summaryColumns+" FROM events e WHERE e.id=?", id))
	return es, mapError(err)
}

// EventFilter narrows ListSummaries. Zero values match everything.
type EventFilter struct {
	Approval    model.ApprovalStatus
	OrganizerID uint64
}

// ListSummaries returns events newest first.
func (r *EventRepo) ListSummaries(ctx context.Context, f EventFilter) ([]model.EventSummary, error) {
	var (
		where []string
		args  []any
	)
	if f.Approval != "" {
		where = append(where, "e.approval_status=?")
		args = append(args, string(f.Approval))
	}
	if f.OrganizerID != 0 {
		where = append(where, "e.organizer_id=?")
		args = append(args, f.OrganizerID)
	}
	q := "SELECT " + summaryColumns + " FROM events e"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY e.created_at DESC, e.id DESC"
	return r.listSummaries(ctx, q, args...)
}

// ListRegisteredBy returns the events the user holds a registration for.
func (r *EventRepo) ListRegisteredBy(ctx context.Context, userID uint64) ([]model.EventSummary, error) {
	return r.listSummaries(ctx, "SELECT "+summaryColumns+` FROM events e
	JOIN registrations rg ON rg.event_id = e.id
	JOIN participants p ON p.id = rg.participant_id
	WHERE p.user_id = ?
	ORDER BY rg.created_at DESC, e.id DESC`, userID)
}

// ListUnreviewedRegistered returns dated events the user registered for and
// has not reviewed, latest date first.
func (r *EventRepo) ListUnreviewedRegistered(ctx context.Context, userID uint64) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+eventColumns+` FROM events e
	JOIN registrations rg ON rg.event_id = e.id
	JOIN participants p ON p.id = rg.participant_id
	WHERE p.user_id = ? AND e.date <> ''
	AND NOT EXISTS (SELECT 1 FROM reviews v WHERE v.event_id = e.id AND v.user_id = ?)
	ORDER BY e.date DESC, e.id DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepo) listSummaries(ctx context.Context, query string, args ...any) ([]model.EventSummary, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.EventSummary, 0)
	for rows.Next() {
		es, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, es)
	}
	return out, rows.Err()
}

// Update writes every mutable column of e. Approval is not touched, and a
// row already in the confirmed stage keeps it whatever e.Stage says.
func (r *EventRepo) Update(ctx context.Context, e model.Event, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE events SET title=?, description=?, keywords=?, instructor_name=?, fee=?, date=?, time_range=?,
	min_participants=?, max_participants=?,
	event_stage=CASE WHEN event_stage=? THEN event_stage ELSE ? END,
	material_url=?, material_content=?, updated_at=? WHERE id=?`,
		e.Title, e.Description, e.Keywords, e.InstructorName, e.Fee, e.Date, e.TimeRange,
		e.MinParticipants, e.MaxParticipants,
		string(model.StageConfirmed), string(e.Stage),
		e.MaterialURL, e.MaterialContent, now.UTC(), e.ID)
	return mapError(err)
}

// SetApproval changes the approval status.
func (r *EventRepo) SetApproval(ctx context.Context, id uint64, status model.ApprovalStatus, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET approval_status=?, updated_at=? WHERE id=?", string(status), now.UTC(), id)
	return mapError(err)
}

// ConfirmIfNotConfirmed moves the event to the confirmed stage unless it is
// already there. It reports true only for the caller whose update changed the
// row, which makes that caller the sole sender of confirmation notices.
func (r *EventRepo) ConfirmIfNotConfirmed(ctx context.Context, id uint64, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE events SET event_stage=?, updated_at=? WHERE id=? AND event_stage<>?",
		string(model.StageConfirmed), now.UTC(), id, string(model.StageConfirmed))
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetMaterial stores the public URL of the uploaded material.
func (r *EventRepo) SetMaterial(ctx context.Context, id uint64, url string, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET material_url=?, updated_at=? WHERE id=?", url, now.UTC(), id)
	return mapError(err)
}

// DeleteTx removes the event row. Dependent rows must be gone already.
func (r *EventRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}
