package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtxFallbacks(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	fallback := zap.New(core)

	if got := FromCtx(context.Background(), fallback); got != fallback {
		t.Error("Expected fallback logger when context carries none")
	}

	scoped := zap.NewNop()
	ctx := WithContext(context.Background(), scoped)
	if got := FromCtx(ctx, fallback); got != scoped {
		t.Error("Expected context logger to win over fallback")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Errorf("Expected empty request id, got %q", id)
	}
	ctx := WithRequestID(context.Background(), "abc-123")
	if id := RequestID(ctx); id != "abc-123" {
		t.Errorf("Expected abc-123, got %q", id)
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	e := echo.New()
	e.Use(Middleware())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDKey, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	entries := logs.FilterMessage("HTTP request completed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 request log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Errorf("Expected request_id req-1, got %v", fields["request_id"])
	}
	if fields["path"] != "/ping" {
		t.Errorf("Expected path /ping, got %v", fields["path"])
	}
}
