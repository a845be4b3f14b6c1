package service_test

import (
	"context"
	"testing"

	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/testfixtures"
)

func TestUpsertParticipantConverges(t *testing.T) {
	s := testfixtures.NewServices(t)
	ctx := context.Background()
	u := s.CreateUser(t, "Kim", "kim@example.com")

	guest, err := s.Participants.Upsert(ctx, service.UpsertParticipantParams{Name: "Kim", Email: "kim@example.com", Phone: "010"})
	if err != nil {
		t.Fatalf("guest upsert: %v", err)
	}
	if guest.UserID != nil {
		t.Fatalf("guest should not be linked")
	}

	uid := u.ID
	linked, err := s.Participants.Upsert(ctx, service.UpsertParticipantParams{Name: "Kim Min", Email: "kim@example.com", Phone: "011", UserID: &uid})
	if err != nil {
		t.Fatalf("linked upsert: %v", err)
	}
	if linked.ID != guest.ID || linked.UserID == nil || *linked.UserID != uid {
		t.Fatalf("email match did not converge: %+v", linked)
	}

	moved, err := s.Participants.Upsert(ctx, service.UpsertParticipantParams{Name: "Kim Min", Email: "kim.new@example.com", Phone: "011", UserID: &uid})
	if err != nil {
		t.Fatalf("user id upsert: %v", err)
	}
	if moved.ID != guest.ID || moved.Email != "kim.new@example.com" {
		t.Fatalf("user id match did not update in place: %+v", moved)
	}

	var n int
	if err := s.Harness.DB.QueryRow("SELECT COUNT(*) FROM participants").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one participant row, got %d", n)
	}
}
