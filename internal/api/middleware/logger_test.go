package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/traceid"
)

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"app-1"}`))
	})
	handler := traceid.Middleware(StructuredLogger(logger)(nextHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loan-applications", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := buf.String()
	if line == "" {
		t.Fatal("expected an access log line, got none")
	}
	for _, want := range []string{
		"method=POST",
		"path=/api/v1/loan-applications",
		"status=201",
		"bytes_written=14",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected log line to contain %q, got %q", want, line)
		}
	}
	if !strings.Contains(line, "trace_id=") || strings.Contains(line, `trace_id=""`) {
		t.Errorf("expected a populated trace_id attribute, got %q", line)
	}
}
