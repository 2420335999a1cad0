package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareScopesLoggerToRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	e := echo.New()
	e.Use(Middleware(base))
	e.GET("/ping", func(c echo.Context) error {
		FromContext(c).Info("inside handler")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDKey, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected handler and access log entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.ContextMap()["request_id"] != "req-42" {
			t.Fatalf("entry %q missing request id: %v", entry.Message, entry.ContextMap())
		}
	}
	if entries[1].Message != "HTTP request completed" || entries[1].ContextMap()["status"] != int64(http.StatusNoContent) {
		t.Fatalf("unexpected access log %+v", entries[1].ContextMap())
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if FromContext(c) == nil {
		t.Fatalf("expected a fallback logger")
	}
}
