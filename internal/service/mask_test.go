package service

import (
	"testing"

	"github.com/iliyamo/spark-meetup/internal/model"
)

func TestMaskName(t *testing.T) {
	cases := map[string]string{
		"":       "Unknown",
		"A":      "A",
		"이영":      "이*",
		"김철수":    "김*수",
		"Charlie": "C*****e",
	}
	for in, want := range cases {
		if got := MaskName(in); got != want {
			t.Errorf("MaskName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScopeFor(t *testing.T) {
	e := model.Event{OrganizerID: 7}
	cases := []struct {
		name string
		p    Principal
		auth bool
		want Scope
	}{
		{"admin", Principal{UserID: 1, Role: model.RoleAdmin}, true, ScopeAdmin},
		{"admin organizer", Principal{UserID: 7, Role: model.RoleAdmin}, true, ScopeAdmin},
		{"organizer", Principal{UserID: 7, Role: model.RoleUser}, true, ScopeOrganizer},
		{"stranger", Principal{UserID: 8, Role: model.RoleUser}, true, ScopePublic},
		{"anonymous", Principal{}, false, ScopePublic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scopeFor(tc.p, tc.auth, e); got != tc.want {
				t.Fatalf("scopeFor = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	if got := ErrorKind(fieldError("x", "bad")); got != "validation" {
		t.Fatalf("validation kind = %q", got)
	}
	if got := ErrorKind(ErrDuplicateRegistration); got != "duplicate_registration" {
		t.Fatalf("duplicate kind = %q", got)
	}
	if got := ErrorKind(nil); got != "" {
		t.Fatalf("nil kind = %q", got)
	}
}
