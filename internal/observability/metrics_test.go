package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsScrape(t *testing.T) {
	m := NewMetrics()
	m.ApiInflightInc()
	m.ObserveAPI("GET", "/api/auth/verify_session", "200", 12*time.Millisecond)
	m.ObserveAPI("GET", "/api/auth/verify_session", "401", 3*time.Millisecond)
	m.ApiInflightDec()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`neurobridge_auth_http_requests_total{method="GET",route="/api/auth/verify_session",status="200"} 1`,
		`neurobridge_auth_http_requests_total{method="GET",route="/api/auth/verify_session",status="401"} 1`,
		"neurobridge_auth_http_request_duration_seconds_count",
		"neurobridge_auth_http_requests_inflight 0",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("scrape missing %q:\n%s", want, body)
		}
	}
}
