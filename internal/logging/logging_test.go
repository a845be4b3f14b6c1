package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected stored logger, got %v", got)
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil logger, got %v", got)
	}
}

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("prod logger must drop debug, got %q", buf.String())
	}
	New(&buf, "dev").Debug("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("dev logger must emit debug JSON, got %q", buf.String())
	}
}
