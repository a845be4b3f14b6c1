package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db, err := Open(Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "m.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, DriverSQLite); err != nil {
			t.Fatalf("migrate pass %d: %v", i+1, err)
		}
	}

	for _, table := range []string{"users", "refresh_tokens", "password_reset_tokens", "available_slots", "events", "participants", "registrations", "reviews"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var applied int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+migrationTable).Scan(&applied); err != nil {
		t.Fatal(err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- comment\nCREATE TABLE a (\n  id INT\n);\n\nCREATE INDEX i ON a(id);\n")
	if len(got) != 2 {
		t.Fatalf("statements = %q", got)
	}
}

func TestDSN(t *testing.T) {
	driver, dsn, err := dsnFor(Options{Driver: "mysql", User: "u", Pass: "p", Host: "db", Port: "3306", Name: "meetup"})
	if err != nil || driver != DriverMySQL {
		t.Fatalf("driver = %q, %v", driver, err)
	}
	if want := "u:p@tcp(db:3306)/meetup?charset=utf8mb4&parseTime=true&loc=UTC"; dsn != want {
		t.Fatalf("dsn = %q", dsn)
	}
	if _, _, err := dsnFor(Options{Driver: "sqlite"}); err == nil {
		t.Fatal("sqlite without path accepted")
	}
	if _, _, err := dsnFor(Options{Driver: "postgres"}); err == nil {
		t.Fatal("unknown driver accepted")
	}
}
