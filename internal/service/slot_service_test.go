package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/testfixtures"
)

func TestSlotsAdminOnly(t *testing.T) {
	s := testfixtures.NewServices(t)
	admin := s.CreateUser(t, "Admin", "admin@example.com", testfixtures.AsAdmin())
	user := s.CreateUser(t, "User", "user@example.com")
	params := service.CreateSlotParams{Date: "2025-12-10", StartTime: "10:00", EndTime: "12:00"}

	slot, err := s.Slots.Create(testfixtures.As(admin), params)
	if err != nil {
		t.Fatalf("admin Create: %v", err)
	}
	if _, err := s.Slots.Create(testfixtures.As(user), params); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := s.Slots.Create(context.Background(), params); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	for name, ctx := range map[string]context.Context{"admin": testfixtures.As(admin), "user": testfixtures.As(user)} {
		list, err := s.Slots.List(ctx)
		if err != nil {
			t.Fatalf("%s List: %v", name, err)
		}
		if len(list) != 1 || list[0].StartTime != "10:00" || list[0].EndTime != "12:00" || !list[0].IsAvailable {
			t.Fatalf("%s sees %+v", name, list)
		}
	}

	if err := s.Slots.Delete(testfixtures.As(user), slot.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
	if err := s.Slots.Delete(testfixtures.As(admin), slot.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Slots.Delete(testfixtures.As(admin), slot.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSlotValidation(t *testing.T) {
	s := testfixtures.NewServices(t)
	admin := s.CreateUser(t, "Admin", "admin@example.com", testfixtures.AsAdmin())

	cases := []struct {
		name   string
		params service.CreateSlotParams
		field  string
	}{
		{"bad date", service.CreateSlotParams{Date: "12/10/2025", StartTime: "10:00", EndTime: "12:00"}, "date"},
		{"bad start", service.CreateSlotParams{Date: "2025-12-10", StartTime: "10", EndTime: "12:00"}, "startTime"},
		{"end before start", service.CreateSlotParams{Date: "2025-12-10", StartTime: "12:00", EndTime: "10:00"}, "endTime"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Slots.Create(testfixtures.As(admin), tc.params)
			var vErr *service.ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors[tc.field] == "" {
				t.Fatalf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}
