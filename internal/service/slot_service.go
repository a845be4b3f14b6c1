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

// SlotStore persists admin-defined availability windows.
type SlotStore interface {
	Create(ctx context.Context, s model.AvailableSlot) (uint64, error)
	List(ctx context.Context) ([]model.AvailableSlot, error)
	ListByDate(ctx context.Context, date string) ([]model.AvailableSlot, error)
	Delete(ctx context.Context, id uint64) error
}

// SlotService manages availability windows.
type SlotService struct {
	slots  SlotStore
	now    func() time.Time
	logger *slog.Logger
}

// NewSlotService constructs a SlotService.
func NewSlotService(slots SlotStore, now func() time.Time, logger *slog.Logger) *SlotService {
	if now == nil {
		now = time.Now
	}
	return &SlotService{slots: slots, now: now, logger: defaultLogger(logger)}
}

// CreateSlotParams is the input of Create.
type CreateSlotParams struct {
	Date      string
	StartTime string
	EndTime   string
}

// List returns every slot. Open to any caller.
func (s *SlotService) List(ctx context.Context) (_ []model.AvailableSlot, err error) {
	defer func() { logFailure(ctx, s.logger, "SlotService", "List", err) }()

	out, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

// Create adds an available slot. Admin only.
func (s *SlotService) Create(ctx context.Context, params CreateSlotParams) (slot model.AvailableSlot, err error) {
	logger := serviceLogger(ctx, s.logger, "SlotService", "Create", "date", params.Date)
	defer func() {
		if err == nil {
			logger = logger.With("slot_id", slot.ID)
		}
		logOutcome(ctx, logger, err, "slot creation")
	}()

	if _, err = requireRole(ctx, model.RoleAdmin); err != nil {
		return
	}
	params.Date = strings.TrimSpace(params.Date)
	params.StartTime = strings.TrimSpace(params.StartTime)
	params.EndTime = strings.TrimSpace(params.EndTime)

	v := &ValidationError{}
	if !model.ValidDate(params.Date) {
		v.add("date", "date must be YYYY-MM-DD")
	}
	if !model.ValidClock(params.StartTime) {
		v.add("startTime", "startTime must be HH:MM")
	}
	if !model.ValidClock(params.EndTime) {
		v.add("endTime", "endTime must be HH:MM")
	}
	if !v.HasErrors() && params.StartTime >= params.EndTime {
		v.add("endTime", "endTime must be after startTime")
	}
	if err = v.err(); err != nil {
		return
	}

	now := s.now()
	slot = model.AvailableSlot{
		Date:        params.Date,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var id uint64
	if id, err = s.slots.Create(ctx, slot); err != nil {
		err = fmt.Errorf("create slot: %w", err)
		return
	}
	slot.ID = id
	return
}

// Delete removes a slot. Admin only.
func (s *SlotService) Delete(ctx context.Context, id uint64) (err error) {
	logger := serviceLogger(ctx, s.logger, "SlotService", "Delete", "slot_id", id)
	defer func() { logOutcome(ctx, logger, err, "slot deletion") }()

	if _, err = requireRole(ctx, model.RoleAdmin); err != nil {
		return
	}
	err = s.slots.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrNotFound
		return
	}
	if err != nil {
		err = fmt.Errorf("delete slot: %w", err)
	}
	return
}

// covered reports whether any open slot on date contains timeRange.
func covered(ctx context.Context, slots SlotStore, date, timeRange string) (bool, error) {
	start, end, ok := model.ParseTimeRange(timeRange)
	if !ok {
		return false, nil
	}
	list, err := slots.ListByDate(ctx, date)
	if err != nil {
		return false, fmt.Errorf("list slots: %w", err)
	}
	for _, sl := range list {
		if sl.Covers(date, start, end) {
			return true, nil
		}
	}
	return false, nil
}
