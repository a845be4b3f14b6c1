package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/iliyamo/spark-meetup/internal/logging"
	"github.com/iliyamo/spark-meetup/internal/testfixtures"
)

func TestReadFailuresAreLogged(t *testing.T) {
	s := testfixtures.NewServices(t)
	var buf bytes.Buffer
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	if _, err := s.Events.ListApproved(ctx); err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("successful read logged: %s", buf.String())
	}

	if err := s.Harness.DB.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}
	reads := map[string]func() error{
		"ListApproved": func() error { _, err := s.Events.ListApproved(ctx); return err },
		"Get":          func() error { _, err := s.Events.Get(ctx, 1); return err },
		"List":         func() error { _, err := s.Slots.List(ctx); return err },
	}
	for op, read := range reads {
		buf.Reset()
		if err := read(); err == nil {
			t.Fatalf("%s: expected an error on a closed database", op)
		}
		out := buf.String()
		if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, `"operation":"`+op+`"`) {
			t.Fatalf("%s: failure not logged: %q", op, out)
		}
	}
}
