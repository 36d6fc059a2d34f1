package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestMetrics_ProfilesGauge(t *testing.T) {
	n := 3
	m := NewMetrics(func() int { return n })

	if !strings.Contains(scrape(t, m), "aura_profiles 3") {
		t.Error("profiles gauge not exported")
	}
	n = 5
	if !strings.Contains(scrape(t, m), "aura_profiles 5") {
		t.Error("profiles gauge not sampled on scrape")
	}
}

func TestMetrics_ObserveCompletion(t *testing.T) {
	m := NewMetrics(nil)

	m.ObserveCompletion("gemini", 200*time.Millisecond, "")
	m.ObserveCompletion("gemini", time.Second, "timeout")
	m.ObserveCompletion("gemini", time.Second, "timeout")

	if got := testutil.ToFloat64(m.CompletionErrors.WithLabelValues("timeout")); got != 2 {
		t.Errorf("timeout errors = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.CompletionDuration); got != 2 {
		t.Errorf("duration series = %d, want 2 (ok and error)", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveIntent("diet")
	m.ObserveCompletion("gemini", time.Second, "empty")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(nil)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, p := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/items/{id}", "418")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", FormatJSON)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown", "intent", "diet")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["intent"] != "diet" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewLogger_Formats(t *testing.T) {
	for _, f := range []string{FormatConsole, FormatText, FormatJSON, ""} {
		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "debug", f)
		if err != nil {
			t.Fatalf("format %q: %v", f, err)
		}
		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("format %q wrote %q", f, buf.String())
		}
	}

	if _, err := NewLogger(io.Discard, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
