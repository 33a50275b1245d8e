package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/lcmform/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m.handler == nil {
		t.Fatal("Metrics.handler should be initialized")
	}
	// Result series exist before the first request.
	if n := testutil.CollectAndCount(m.calculations); n != 4 {
		t.Errorf("calculation series = %d, want 4", n)
	}
}

func TestMetrics_ActiveRequests(t *testing.T) {
	m := NewMetrics()

	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	if got := testutil.ToFloat64(m.activeRequests); got != 2 {
		t.Errorf("active = %v, want 2", got)
	}
	m.DecrementActiveRequests()
	if got := testutil.ToFloat64(m.activeRequests); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal); got != 2 {
		t.Errorf("total = %v, want 2", got)
	}
}

func TestMetrics_ObserveCalculation(t *testing.T) {
	m := NewMetrics()
	m.ObserveCalculation(resultSuccess, 3*time.Millisecond)
	m.ObserveCalculation(resultRejected, 0)
	m.ObserveCalculation(resultRejected, 0)

	if got := testutil.ToFloat64(m.calculations.WithLabelValues(resultSuccess)); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.calculations.WithLabelValues(resultRejected)); got != 2 {
		t.Errorf("rejected = %v, want 2", got)
	}
	body := scrape(t, m)
	if !strings.Contains(body, "lcmform_calculation_duration_seconds_count 1") {
		t.Errorf("only successes should be timed, got:\n%s", body)
	}
}

func TestMetrics_WritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.IncrementActiveRequests()
	defer m.DecrementActiveRequests()

	body := scrape(t, m)
	for _, want := range []string{
		"lcmform_active_requests 1",
		"lcmform_requests_total 1",
		`lcmform_calculations_total{result="rate_limited"} 0`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

func TestServer_metricsMiddleware(t *testing.T) {
	s := &Server{metrics: NewMetrics()}

	var activeDuring float64
	handler := s.metricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		activeDuring = testutil.ToFloat64(s.metrics.activeRequests)
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, CalculatePath, http.NoBody))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if activeDuring != 1 {
		t.Errorf("active during request = %v, want 1", activeDuring)
	}
	if got := testutil.ToFloat64(s.metrics.activeRequests); got != 0 {
		t.Errorf("active after request = %v, want 0", got)
	}
}

func TestServer_handleMetrics(t *testing.T) {
	t.Run("GET returns metrics", func(t *testing.T) {
		s := &Server{metrics: NewMetrics()}
		rec := httptest.NewRecorder()
		s.handleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if !strings.Contains(rec.Body.String(), "lcmform_calculations_total") {
			t.Error("response should contain lcmform metrics")
		}
	})

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		t.Run(method+" returns method not allowed", func(t *testing.T) {
			s := &Server{metrics: NewMetrics(), logger: newTestLogger()}
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	return rec.Body.String()
}

// testLogger is a minimal logger for testing that implements logging.Logger.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}
