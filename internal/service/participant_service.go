package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/repository"
)

// ParticipantStore persists participant contact records.
type ParticipantStore interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Participant, error)
	GetByEmail(ctx context.Context, email string) (model.Participant, error)
	Create(ctx context.Context, p model.Participant) (uint64, error)
	Update(ctx context.Context, p model.Participant, now time.Time) error
}

// UpsertParticipantParams identifies the contact to reconcile.
type UpsertParticipantParams struct {
	Name   string
	Email  string
	Phone  string
	UserID *uint64
}

// ParticipantService reconciles contact records so one identity maps to one row.
type ParticipantService struct {
	store  ParticipantStore
	now    func() time.Time
	logger *slog.Logger
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(store ParticipantStore, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{store: store, now: now, logger: defaultLogger(logger)}
}

// Upsert resolves the participant by user id, then by email, and inserts one
// only when neither matches. A lost insert race falls back to the row the
// winner created.
func (s *ParticipantService) Upsert(ctx context.Context, params UpsertParticipantParams) (model.Participant, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.Phone = strings.TrimSpace(params.Phone)
	if params.Email == "" {
		return model.Participant{}, fieldError("email", "email is required")
	}

	if params.UserID != nil {
		p, err := s.store.GetByUserID(ctx, *params.UserID)
		switch {
		case err == nil:
			return s.overwrite(ctx, p, params)
		case !errors.Is(err, repository.ErrNotFound):
			return model.Participant{}, fmt.Errorf("load participant by user: %w", err)
		}
	}

	p, err := s.store.GetByEmail(ctx, params.Email)
	switch {
	case err == nil:
		return s.overwrite(ctx, p, params)
	case !errors.Is(err, repository.ErrNotFound):
		return model.Participant{}, fmt.Errorf("load participant by email: %w", err)
	}

	now := s.now()
	p = model.Participant{
		UserID:    params.UserID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.store.Create(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, gerr := s.store.GetByEmail(ctx, params.Email)
		if gerr != nil {
			return model.Participant{}, fmt.Errorf("reload participant after race: %w", gerr)
		}
		return s.overwrite(ctx, existing, params)
	}
	if err != nil {
		return model.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	p.ID = id
	s.logger.DebugContext(ctx, "participant created", "participant_id", id)
	return p, nil
}

func (s *ParticipantService) overwrite(ctx context.Context, p model.Participant, params UpsertParticipantParams) (model.Participant, error) {
	updated := p
	updated.Name = params.Name
	updated.Phone = params.Phone
	updated.Email = params.Email
	if params.UserID != nil {
		uid := *params.UserID
		updated.UserID = &uid
	}
	now := s.now()
	err := s.store.Update(ctx, updated, now)
	if errors.Is(err, repository.ErrDuplicate) {
		// The new email belongs to another participant; keep the old one.
		updated.Email = p.Email
		err = s.store.Update(ctx, updated, now)
	}
	if err != nil {
		return model.Participant{}, fmt.Errorf("update participant: %w", err)
	}
	updated.UpdatedAt = now
	return updated, nil
}
