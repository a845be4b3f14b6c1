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

// ReviewStore persists reviews.
type ReviewStore interface {
	Create(ctx context.Context, rv model.Review) (uint64, error)
	Exists(ctx context.Context, userID, eventID uint64) (bool, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Review, error)
}

// ReviewEventSource is the event lookup the review flow needs.
type ReviewEventSource interface {
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	ListUnreviewedRegistered(ctx context.Context, userID uint64) ([]model.Event, error)
}

// RegistrationChecker answers whether a user is registered for an event.
type RegistrationChecker interface {
	ExistsForUser(ctx context.Context, eventID, userID uint64) (bool, error)
}

// ReviewService handles post-event reviews.
type ReviewService struct {
	reviews       ReviewStore
	events        ReviewEventSource
	registrations RegistrationChecker
	now           func() time.Time
	logger        *slog.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews ReviewStore, events ReviewEventSource, registrations RegistrationChecker, now func() time.Time, logger *slog.Logger) *ReviewService {
	if now == nil {
		now = time.Now
	}
	return &ReviewService{
		reviews:       reviews,
		events:        events,
		registrations: registrations,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// CreateReviewParams is the input of Create. A nil Rating means the default.
type CreateReviewParams struct {
	EventID uint64
	Content string
	Rating  *int
}

// Create stores the caller's review of an event they registered for and
// that has already taken place.
func (s *ReviewService) Create(ctx context.Context, params CreateReviewParams) (review model.Review, err error) {
	logger := serviceLogger(ctx, s.logger, "ReviewService", "Create", "event_id", params.EventID)
	defer func() {
		if err == nil {
			logger = logger.With("review_id", review.ID)
		}
		logOutcome(ctx, logger, err, "review creation")
	}()

	var p Principal
	if p, err = requireUser(ctx); err != nil {
		return
	}

	rating := model.DefaultRating
	if params.Rating != nil {
		rating = *params.Rating
	}
	content := strings.TrimSpace(params.Content)
	v := &ValidationError{}
	if content == "" {
		v.add("content", "content is required")
	}
	if rating < model.MinRating || rating > model.MaxRating {
		v.add("rating", fmt.Sprintf("rating must be between %d and %d", model.MinRating, model.MaxRating))
	}
	if err = v.err(); err != nil {
		return
	}

	var exists bool
	if exists, err = s.reviews.Exists(ctx, p.UserID, params.EventID); err != nil {
		err = fmt.Errorf("check review: %w", err)
		return
	}
	if exists {
		err = ErrConflict
		return
	}
	var registered bool
	if registered, err = s.registrations.ExistsForUser(ctx, params.EventID, p.UserID); err != nil {
		err = fmt.Errorf("check registration: %w", err)
		return
	}
	if !registered {
		err = ErrForbidden
		return
	}

	var event model.Event
	event, err = s.events.GetByID(ctx, params.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		err = ErrNotFound
		return
	}
	if err != nil {
		err = fmt.Errorf("load event: %w", err)
		return
	}
	now := s.now()
	if !event.IsCompleted(now) {
		err = fieldError("eventId", "the event has not finished yet")
		return
	}

	review = model.Review{
		EventID:   params.EventID,
		UserID:    p.UserID,
		Content:   content,
		Rating:    rating,
		CreatedAt: now,
	}
	var id uint64
	id, err = s.reviews.Create(ctx, review)
	if errors.Is(err, repository.ErrDuplicate) {
		err = ErrConflict
		return
	}
	if err != nil {
		err = fmt.Errorf("create review: %w", err)
		return
	}
	review.ID = id
	return
}

// List returns an event's reviews, newest first, with reviewer names masked.
func (s *ReviewService) List(ctx context.Context, eventID uint64) (_ []model.Review, err error) {
	defer func() { logFailure(ctx, s.logger, "ReviewService", "List", err) }()

	list, err := s.reviews.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	for i := range list {
		list[i].ReviewerName = MaskName(list[i].ReviewerName)
	}
	return list, nil
}

// Pending returns one finished event the caller attended and has not
// reviewed, or nil when there is none.
func (s *ReviewService) Pending(ctx context.Context) (_ *model.Event, err error) {
	defer func() { logFailure(ctx, s.logger, "ReviewService", "Pending", err) }()

	p, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.events.ListUnreviewedRegistered(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list unreviewed events: %w", err)
	}
	now := s.now()
	for _, e := range list {
		if e.IsCompleted(now) {
			return &e, nil
		}
	}
	return nil, nil
}
