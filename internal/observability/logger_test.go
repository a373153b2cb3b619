package observability

import (
	"context"
	"log/slog"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatalf("expected base logger without request id")
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	if level.Level() != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", level.Level())
	}
	SetLevel("nonsense")
	if level.Level() != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v", level.Level())
	}
}
