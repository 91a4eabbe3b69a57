package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/compare", "/api/v1/compare"},
		{"/api/v1/compare/tle", "/api/v1/compare/tle"},
		{"/api/v1/modes", "/api/v1/modes"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v1/compare/25544", "other"},
		{"/api/v2/compare", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizeRoute(tt.path); got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestRecordComparison(t *testing.T) {
	before := testutil.ToFloat64(comparisonsTotal.WithLabelValues("stats", OutcomeDegenerateFrame))
	RecordComparison("stats", OutcomeDegenerateFrame, 10, time.Millisecond)
	after := testutil.ToFloat64(comparisonsTotal.WithLabelValues("stats", OutcomeDegenerateFrame))
	if after-before != 1 {
		t.Errorf("degenerate_frame counter moved by %v, want 1", after-before)
	}
}

func TestMiddlewareCapturesStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "418"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/teapot", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "418"))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if after-before != 1 {
		t.Errorf("request counter moved by %v, want 1", after-before)
	}
}
