package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// SlotRepo stores the admin-defined availability windows.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

const slotColumns = "id, date, start_time, end_time, is_available, created_at, updated_at"

func scanSlot(s scanner) (model.AvailableSlot, error) {
	var sl model.AvailableSlot
	err := s.Scan(&sl.ID, &sl.Date, &sl.StartTime, &sl.EndTime, &sl.IsAvailable, &sl.CreatedAt, &sl.UpdatedAt)
	return sl, err
}

// Create inserts a slot and returns its id.
func (r *SlotRepo) Create(ctx context.Context, s model.AvailableSlot) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO available_slots (date, start_time, end_time, is_available, created_at, updated_at) VALUES (?,?,?,?,?,?)",
		s.Date, s.StartTime, s.EndTime, s.IsAvailable, s.CreatedAt.UTC(), s.CreatedAt.UTC())
	if err != nil {
		return 0, mapError(err)
	}
	return lastID(res)
}

// GetByID returns one slot.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (model.AvailableSlot, error) {
	s, err := scanSlot(r.DB.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM available_slots WHERE id=?", id))
	return s, mapError(err)
}

// List returns every slot ordered by date and start time.
func (r *SlotRepo) List(ctx context.Context) ([]model.AvailableSlot, error) {
	return r.list(ctx, "SELECT "+slotColumns+" FROM available_slots ORDER BY date, start_time, id")
}

// ListByDate returns the slots of a single day.
func (r *SlotRepo) ListByDate(ctx context.Context, date string) ([]model.AvailableSlot, error) {
	return r.list(ctx, "SELECT "+slotColumns+" FROM available_slots WHERE date=? ORDER BY start_time, id", date)
}

func (r *SlotRepo) list(ctx context.Context, query string, args ...any) ([]model.AvailableSlot, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AvailableSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a slot. ErrNotFound when the id does not exist.
func (r *SlotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM available_slots WHERE id=?", id)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

// SetAvailable toggles whether the slot accepts new events.
func (r *SlotRepo) SetAvailable(ctx context.Context, id uint64, available bool, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE available_slots SET is_available=?, updated_at=? WHERE id=?", available, now.UTC(), id)
	return mapError(err)
}
