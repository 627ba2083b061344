package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newMeteredRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/answer", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return r
}

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	r := newMeteredRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/answer", "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/answer", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/answer", "200"))
	if after-before != 1 {
		t.Errorf("expected one more request, got delta %v", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("expected response size observations")
	}
}

func TestMiddleware_RecordsExplicitStatus(t *testing.T) {
	r := newMeteredRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "503")); got < 1 {
		t.Errorf("expected a 503 sample for /health, got %v", got)
	}
}

func TestMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	r := newMeteredRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))

	for _, p := range []string{"/wp-admin", "/.env", "/v1/answer/../../etc"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, http.NoBody))
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404"))
	if after-before != 3 {
		t.Errorf("expected 3 unmatched samples, got %v", after-before)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := newMeteredRouter()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/answer", http.NoBody))

	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("expected no requests in flight, got %v", got)
	}
}

func TestRegisterHTTPMetrics_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()

	if err := testutil.CollectAndCompare(httpInFlight, strings.NewReader(`
# HELP brewdesk_http_requests_in_flight HTTP requests currently being served
# TYPE brewdesk_http_requests_in_flight gauge
brewdesk_http_requests_in_flight 0
`)); err != nil {
		t.Fatal(err)
	}
}
