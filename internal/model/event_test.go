package model

import (
	"testing"
	"time"
)

func TestEventIsCompleted(t *testing.T) {
	now := time.Date(2025, time.December, 10, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		date string
		tr   string
		want bool
	}{
		{"yesterday", "2025-12-09", "19:00-21:00", true},
		{"today finished", "2025-12-10", "13:00-15:00", true},
		{"today ends now", "2025-12-10", "14:00-15:30", true},
		{"today running", "2025-12-10", "15:00-17:00", false},
		{"tomorrow", "2025-12-11", "09:00-10:00", false},
		{"no date", "", "", false},
		{"today bad range", "2025-12-10", "later", false},
		{"past without range", "2025-12-01", "", true},
		{"today free text finished", "2025-12-10", "13:00 - 15:00 (KST)", true},
		{"today free text running", "2025-12-10", "15:00~17:00", false},
		{"today unparseable", "2025-12-10", "오후 2시-4시", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Event{Date: tc.date, TimeRange: tc.tr}
			if got := e.IsCompleted(now); got != tc.want {
				t.Fatalf("IsCompleted = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLegacyFlags(t *testing.T) {
	e := Event{Stage: StageProposal, Approval: ApprovalPending}
	if !e.IsProposal() || e.IsConfirmed() || e.IsPublic() {
		t.Fatalf("proposal flags wrong: %+v", e)
	}
	e.Stage, e.Approval = StageConfirmed, ApprovalApproved
	if e.IsProposal() || !e.IsConfirmed() || !e.IsPublic() {
		t.Fatalf("confirmed flags wrong: %+v", e)
	}
}

func TestParseTimeRange(t *testing.T) {
	cases := map[string][2]string{
		" 10:00 - 12:30 ":     {"10:00", "12:30"},
		"14:00~16:00":         {"14:00", "16:00"},
		"19:00 - 21:30 (KST)": {"19:00", "21:30"},
		"9:00-10:00":          {"09:00", "10:00"},
	}
	for in, want := range cases {
		start, end, ok := ParseTimeRange(in)
		if !ok || start != want[0] || end != want[1] {
			t.Errorf("%q: got %q %q %v", in, start, end, ok)
		}
	}
	for _, bad := range []string{"", "10:00", "12:00-10:00", "10:00-10:00", "10:00-25:00", "a-b", "오후 2시-4시"} {
		if _, _, ok := ParseTimeRange(bad); ok {
			t.Errorf("%q parsed", bad)
		}
	}
}

func TestSlotCovers(t *testing.T) {
	s := AvailableSlot{Date: "2025-12-10", StartTime: "10:00", EndTime: "12:00", IsAvailable: true}
	if !s.Covers("2025-12-10", "10:00", "12:00") || !s.Covers("2025-12-10", "10:30", "11:00") {
		t.Fatal("window not covered")
	}
	if s.Covers("2025-12-10", "09:30", "11:00") || s.Covers("2025-12-11", "10:00", "11:00") {
		t.Fatal("outside window covered")
	}
	s.IsAvailable = false
	if s.Covers("2025-12-10", "10:00", "11:00") {
		t.Fatal("closed slot covers")
	}
}

func TestUserProfileChecks(t *testing.T) {
	u := User{Name: "Kim", Phone: " "}
	if u.ProfileComplete() {
		t.Fatal("blank phone counted as complete")
	}
	u.Phone = "010-1111-2222"
	if !u.ProfileComplete() {
		t.Fatal("complete profile rejected")
	}
	if u.HasPaymentSetup() {
		t.Fatal("no account on file")
	}
	u.AccountNumber = "Bank 123-456"
	if !u.HasPaymentSetup() {
		t.Fatal("account ignored")
	}
}
