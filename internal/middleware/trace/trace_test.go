package trace

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "finance/internal/log"
)

func newTestLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Component: "test", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" })

	var seen string
	h := applog.Middleware(logger)(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		applog.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusCreated)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/categories", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("expected generated id, got %q", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q, context id %q", got, seen)
	}

	lines := decodeLines(t, &buf)
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %s", len(lines), buf.String())
	}
	if lines[1][applog.FieldRequestID] != seen {
		t.Errorf("handler log missing request id: %v", lines[1])
	}
	end := lines[2]
	if end["msg"] != "HTTP request completed" || end[applog.FieldStatusCode] != float64(201) {
		t.Errorf("unexpected completion record: %v", end)
	}
	if end[applog.FieldClientIP] != "203.0.113.9" {
		t.Errorf("client ip not logged: %v", end)
	}
}

func TestMiddlewareReusesUpstreamID(t *testing.T) {
	m := NewMiddleware(newTestLogger(&bytes.Buffer{}), nil)

	tests := []struct {
		header string
		reuse  bool
	}{
		{"abc12345-upstream", true},
		{"short", false},
		{"has spaces in it ok", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		var seen string
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		req.Header.Set(RequestIDHeader, tt.header)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if (seen == tt.header) != tt.reuse {
			t.Errorf("header %q: got id %q, reuse=%v", tt.header, seen, tt.reuse)
		}
	}
}

func TestMiddlewareLevelsAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(newTestLogger(&buf), nil)

	for _, status := range []int{200, 404, 500} {
		buf.Reset()
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.WriteHeader(http.StatusTeapot)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		lines := decodeLines(t, &buf)
		end := lines[len(lines)-1]
		want := map[int]string{200: "INFO", 404: "WARN", 500: "ERROR"}[status]
		if end["level"] != want {
			t.Errorf("status %d logged at %v, want %s", status, end["level"], want)
		}
		if end[applog.FieldStatusCode] != float64(status) {
			t.Errorf("status %d recorded as %v", status, end[applog.FieldStatusCode])
		}
	}

	got := m.GetMetrics()
	if got.TotalRequests != 3 || got.ServerErrors != 1 {
		t.Errorf("unexpected metrics: %+v", got)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
