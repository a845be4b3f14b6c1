// Package testfixtures provides shared helpers for repository, service and
// handler tests.
package testfixtures

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iliyamo/spark-meetup/internal/database"
	"github.com/iliyamo/spark-meetup/internal/repository"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database.
type SQLiteHarness struct {
	DB            *sql.DB
	Users         *repository.UserRepo
	Tokens        *repository.TokenRepo
	ResetTokens   *repository.ResetTokenRepo
	Slots         *repository.SlotRepo
	Events        *repository.EventRepo
	Participants  *repository.ParticipantRepo
	Registrations *repository.RegistrationRepo
	Reviews       *repository.ReviewRepo
}

// NewSQLiteHarness opens a fresh database under tb.TempDir and registers its
// cleanup with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "meetup.db")
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, Path: path})
	if err != nil {
		tb.Fatalf("failed to open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(context.Background(), db, database.DriverSQLite); err != nil {
		tb.Fatalf("failed to migrate sqlite: %v", err)
	}

	return &SQLiteHarness{
		DB:            db,
		Users:         repository.NewUserRepo(db),
		Tokens:        repository.NewTokenRepo(db),
		ResetTokens:   repository.NewResetTokenRepo(db),
		Slots:         repository.NewSlotRepo(db),
		Events:        repository.NewEventRepo(db),
		Participants:  repository.NewParticipantRepo(db),
		Registrations: repository.NewRegistrationRepo(db),
		Reviews:       repository.NewReviewRepo(db),
	}
}

// WithTx runs fn in a transaction on the harness database.
func (h *SQLiteHarness) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return database.WithTx(ctx, h.DB, fn)
}
