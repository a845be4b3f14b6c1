package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/storage"
	"github.com/iliyamo/spark-meetup/internal/utils"
)

// TestJWTSecret signs access tokens in tests.
const TestJWTSecret = "test-secret"

// TestPassword is the password of every account created by CreateUser.
const TestPassword = "secret123"

// Services wires every service against one SQLite harness.
type Services struct {
	Harness      *SQLiteHarness
	Clock        *Clock
	Dispatcher   *RecordingDispatcher
	Documents    *MemoryDocuments
	Auth         *service.AuthService
	Participants *service.ParticipantService
	Events       *service.EventService
	Reviews      *service.ReviewService
	Slots        *service.SlotService
}

// NewServices builds a Services bundle with a discarding logger and a
// minimum bcrypt cost.
func NewServices(tb testing.TB) *Services {
	tb.Helper()

	h := NewSQLiteHarness(tb)
	clock := NewClock(time.Time{})
	disp := &RecordingDispatcher{}
	docs := &MemoryDocuments{BaseURL: "https://files.example.com"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := clock.Now

	participants := service.NewParticipantService(h.Participants, now, logger)
	return &Services{
		Harness:      h,
		Clock:        clock,
		Dispatcher:   disp,
		Documents:    docs,
		Participants: participants,
		Auth: service.NewAuthService(h.Users, h.Tokens, h.ResetTokens, h.WithTx, disp, service.AuthOptions{
			JWTSecret:      TestJWTSecret,
			AccessTTLMin:   15,
			RefreshTTLDays: 7,
			BcryptCost:     4,
			ResetTokenTTL:  time.Hour,
			FrontendURL:    "http://localhost:3000",
		}, now, logger),
		Events: service.NewEventService(service.EventDeps{
			Events:        h.Events,
			Registrations: h.Registrations,
			Reviews:       h.Reviews,
			Users:         h.Users,
			Participants:  participants,
			Slots:         h.Slots,
			Documents:     docs,
			WithTx:        h.WithTx,
			Dispatcher:    disp,
			FrontendURL:   "http://localhost:3000",
		}, now, logger),
		Reviews: service.NewReviewService(h.Reviews, h.Events, h.Registrations, now, logger),
		Slots:   service.NewSlotService(h.Slots, now, logger),
	}
}

// UserOption adjusts a user before CreateUser inserts it.
type UserOption func(*model.User)

// AsAdmin gives the user the admin role.
func AsAdmin() UserOption { return func(u *model.User) { u.Role = model.RoleAdmin } }

// WithAccount sets a bank account string.
func WithAccount(account string) UserOption {
	return func(u *model.User) { u.AccountNumber = account }
}

// WithoutPhone clears the phone number so the profile is incomplete.
func WithoutPhone() UserOption { return func(u *model.User) { u.Phone = "" } }

// SlotGated clears the always-available flag.
func SlotGated() UserOption { return func(u *model.User) { u.AlwaysAvailable = false } }

// CreateUser inserts a local account with TestPassword and returns it.
func (s *Services) CreateUser(tb testing.TB, name, email string, opts ...UserOption) model.User {
	tb.Helper()
	hash, err := utils.HashPassword(TestPassword, 4)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := model.User{
		Name:            name,
		Email:           email,
		Phone:           "010-0000-0000",
		PasswordHash:    hash,
		AlwaysAvailable: true,
		LoginMethod:     model.LoginMethodLocal,
		Role:            model.RoleUser,
		CreatedAt:       s.Clock.Now(),
	}
	for _, opt := range opts {
		opt(&u)
	}
	id, err := s.Harness.Users.Create(context.Background(), u)
	if err != nil {
		tb.Fatalf("create user %s: %v", email, err)
	}
	u.ID = id
	return u
}

// As returns a context authenticated as u.
func As(u model.User) context.Context {
	return service.WithPrincipal(context.Background(), service.Principal{UserID: u.ID, Role: u.Role})
}

// MemoryDocuments is an in-memory DocumentStore.
type MemoryDocuments struct {
	BaseURL string
	Stored  []string
}

// StoreDocument records the upload and returns a URL under BaseURL.
func (m *MemoryDocuments) StoreDocument(_ context.Context, _ string, displayName, folderKey string) (storage.Document, error) {
	key := folderKey + "/" + displayName
	m.Stored = append(m.Stored, key)
	return storage.Document{Key: key, PublicURL: m.BaseURL + "/" + key}, nil
}
