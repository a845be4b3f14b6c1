package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/testfixtures"
)

func TestCreateReviewRules(t *testing.T) {
	s := testfixtures.NewServices(t)
	admin := s.CreateUser(t, "Admin", "admin@example.com", testfixtures.AsAdmin())
	org := s.CreateUser(t, "Org", "org@example.com")
	attendee := s.CreateUser(t, "Attendee", "att@example.com")
	outsider := s.CreateUser(t, "Outsider", "out@example.com")

	past := approvedEvent(t, s, org, admin, service.CreateEventParams{Title: "Past", Date: "2025-12-01", TimeRange: "10:00-12:00"})
	future := approvedEvent(t, s, org, admin, service.CreateEventParams{Title: "Future", Date: "2025-12-30", TimeRange: "10:00-12:00"})
	for _, id := range []uint64{past.ID, future.ID} {
		if _, err := s.Events.Register(testfixtures.As(attendee), id); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	params := service.CreateReviewParams{EventID: past.ID, Content: "Great session"}
	if _, err := s.Reviews.Create(testfixtures.As(outsider), params); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	rv, err := s.Reviews.Create(testfixtures.As(attendee), params)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rv.Rating != 5 {
		t.Fatalf("expected default rating 5, got %d", rv.Rating)
	}
	if _, err := s.Reviews.Create(testfixtures.As(attendee), params); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	_, err = s.Reviews.Create(testfixtures.As(attendee), service.CreateReviewParams{EventID: future.ID, Content: "Too early"})
	var vErr *service.ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["eventId"] == "" {
		t.Fatalf("expected eventId validation error, got %v", err)
	}

	for _, rating := range []int{0, 6} {
		_, err := s.Reviews.Create(testfixtures.As(attendee), service.CreateReviewParams{EventID: future.ID, Content: "x", Rating: intPtr(rating)})
		if !errors.As(err, &vErr) || vErr.FieldErrors["rating"] == "" {
			t.Fatalf("rating %d accepted: %v", rating, err)
		}
	}

	list, err := s.Reviews.List(context.Background(), past.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ReviewerName != "A******e" {
		t.Fatalf("unexpected reviews %+v", list)
	}
}

func TestPendingReview(t *testing.T) {
	s := testfixtures.NewServices(t)
	admin := s.CreateUser(t, "Admin", "admin@example.com", testfixtures.AsAdmin())
	org := s.CreateUser(t, "Org", "org@example.com")
	user := s.CreateUser(t, "User", "user@example.com")

	if got, err := s.Reviews.Pending(testfixtures.As(user)); err != nil || got != nil {
		t.Fatalf("expected no pending review, got %+v, %v", got, err)
	}

	// Today at 09:00 the 08:00-08:30 event is over and the 10:00 one is not.
	done := approvedEvent(t, s, org, admin, service.CreateEventParams{Title: "Morning", Date: "2025-12-10", TimeRange: "08:00-08:30"})
	later := approvedEvent(t, s, org, admin, service.CreateEventParams{Title: "Later", Date: "2025-12-10", TimeRange: "10:00-11:00"})
	for _, id := range []uint64{done.ID, later.ID} {
		if _, err := s.Events.Register(testfixtures.As(user), id); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	got, err := s.Reviews.Pending(testfixtures.As(user))
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if got == nil || got.ID != done.ID {
		t.Fatalf("expected %d pending, got %+v", done.ID, got)
	}

	if _, err := s.Reviews.Create(testfixtures.As(user), service.CreateReviewParams{EventID: done.ID, Content: "ok"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, err := s.Reviews.Pending(testfixtures.As(user)); err != nil || got != nil {
		t.Fatalf("expected nothing pending after review, got %+v, %v", got, err)
	}
	if _, err := s.Reviews.Pending(context.Background()); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
