package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestFields(t *testing.T) {
	err := errors.New("boom")
	cases := []struct {
		f    Field
		key  string
		want interface{}
	}{
		{String("k", "v"), "k", "v"},
		{Int("n", 3), "n", 3},
		{Int64("n64", 4), "n64", int64(4)},
		{Float64("f", 0.5), "f", 0.5},
		{Bool("b", true), "b", true},
		{Duration("d", time.Second), "d", time.Second},
		{Error("err", err), "err", err},
	}
	for _, tc := range cases {
		if tc.f.Key() != tc.key {
			t.Fatalf("key = %q, want %q", tc.f.Key(), tc.key)
		}
		if tc.f.Value() != tc.want {
			t.Fatalf("value for %s = %v, want %v", tc.key, tc.f.Value(), tc.want)
		}
	}
}

func TestCharmLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewCharmLogger(LogConfig{Level: "debug", Output: &buf})
	log.With(String("component", "normalize")).Debug("frame normalized", Int("width", 640))

	out := buf.String()
	for _, want := range []string{"frame normalized", "component", "normalize", "width", "640"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestCharmLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewCharmLogger(LogConfig{Level: "warn", Output: &buf})
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info message should be filtered at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn message missing: %q", buf.String())
	}
}

func TestCharmLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewCharmLogger(LogConfig{Level: "info", JSON: true, Output: &buf})
	log.Info("json line", String("k", "v"))
	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("expected JSON output, got %q", out)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveNormalize(10*time.Millisecond, 4)
	m.NormalizeFailed("source_read")
	m.ObserveOCR("noop", time.Millisecond)
	m.Scan("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{MetricNormalizeTime, MetricNormalizeFailures, MetricNormalizePixels, MetricOCRTime, MetricScans} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveNormalize(time.Millisecond, 1)
	m.NormalizeFailed("encoding")
	m.ObserveOCR("noop", time.Millisecond)
	m.Scan("failed")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}
