package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/middleware"
)

func TestLogger(t *testing.T) {
	t.Run("logs method path and status", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/product/x%0Dsale%0A", nil)
		middleware.Logger(zap.New(core))(next).ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(entries))
		}
		entry := entries[0]
		if entry.Level != zapcore.WarnLevel {
			t.Errorf("Expected warn level for 409, got %s", entry.Level)
		}
		fields := entry.ContextMap()
		if fields["path"] != "/api/product/xsale" {
			t.Errorf("Expected sanitized path, got %q", fields["path"])
		}
		if fields["status"] != int64(http.StatusConflict) {
			t.Errorf("Expected status 409, got %v", fields["status"])
		}
	})

	t.Run("wrapper supports flushing", func(t *testing.T) {
		flushed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			f, ok := w.(http.Flusher)
			if !ok {
				t.Fatal("Expected wrapped writer to implement http.Flusher")
			}
			f.Flush()
			flushed = true
		})

		rec := httptest.NewRecorder()
		middleware.Logger(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if !flushed || !rec.Flushed {
			t.Error("Expected response to be flushed")
		}
	})
}
