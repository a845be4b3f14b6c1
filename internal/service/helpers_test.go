package service_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/testfixtures"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// approvedEvent creates an event for organizer and approves it as admin.
func approvedEvent(t *testing.T, s *testfixtures.Services, organizer, admin model.User, params service.CreateEventParams) model.Event {
	t.Helper()
	if params.Title == "" {
		params.Title = "Go Study Night"
	}
	if params.Date == "" && !params.IsProposal {
		params.Date = "2025-12-20"
	}
	if params.TimeRange == "" && !params.IsProposal {
		params.TimeRange = "19:00-21:00"
	}
	if params.OrganizerParticipates == nil {
		params.OrganizerParticipates = boolPtr(false)
	}
	created, err := s.Events.Create(testfixtures.As(organizer), params)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	approved, err := s.Events.Approve(testfixtures.As(admin), created.ID)
	if err != nil {
		t.Fatalf("approve event: %v", err)
	}
	return approved
}

func stageOf(t *testing.T, s *testfixtures.Services, id uint64) model.EventStage {
	t.Helper()
	e, err := s.Harness.Events.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load event: %v", err)
	}
	return e.Stage
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }
