package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// ReviewRepo stores one review per (user, event).
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Create inserts a review. ErrDuplicate when the user already reviewed the event.
func (r *ReviewRepo) Create(ctx context.Context, rv model.Review) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (event_id, user_id, content, rating, created_at) VALUES (?,?,?,?,?)",
		rv.EventID, rv.UserID, rv.Content, rv.Rating, rv.CreatedAt.UTC())
	if err != nil {
		return 0, mapError(err)
	}
	return lastID(res)
}

// Exists reports whether the user has reviewed the event.
func (r *ReviewRepo) Exists(ctx context.Context, userID, eventID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM reviews WHERE user_id=? AND event_id=? LIMIT 1", userID, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ListByEvent returns the event's reviews, newest first.
func (r *ReviewRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT v.id, v.event_id, v.user_id, v.content, v.rating, v.created_at, COALESCE(u.name, '')
	FROM reviews v LEFT JOIN users u ON u.id = v.user_id
	WHERE v.event_id=? ORDER BY v.created_at DESC, v.id DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.EventID, &rv.UserID, &rv.Content, &rv.Rating, &rv.CreatedAt, &rv.ReviewerName); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// DeleteByEventTx removes every review of the event.
func (r *ReviewRepo) DeleteByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE event_id=?", eventID)
	return mapError(err)
}
