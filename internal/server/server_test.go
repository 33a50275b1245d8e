package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/lcmform/internal/endpoint"
	"github.com/agbru/lcmform/internal/sysmon"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MaxInterval: 50,
		RateLimit:   1000,
		RateBurst:   1000,
		Security:    DefaultSecurityConfig(),
	}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, CalculatePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCalculate_Success(t *testing.T) {
	t.Parallel()
	tests := []struct {
		body     string
		want     string
		interval string
	}{
		{`{"x": 1, "y": 10}`, "2520", "1 to 10"},
		{`{"x": 1, "y": 5}`, "60", "1 to 5"},
		{`{"x": 4, "y": 6}`, "60", "4 to 6"},
		{`{"x": 1, "y": 40}`, "5342931457063200", "1 to 40"},
	}
	h := New(testConfig(), WithLogger(newTestLogger())).Handler()

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got endpoint.SuccessPayload
			dec := json.NewDecoder(rec.Body)
			dec.UseNumber()
			require.NoError(t, dec.Decode(&got))
			assert.Equal(t, tt.want, got.Result.String())
			assert.Equal(t, tt.interval, got.Interval)
			require.NotNil(t, got.ComputeTime)
			assert.GreaterOrEqual(t, *got.ComputeTime, 0.0)
			assert.Contains(t, got.Message, "calculated successfully")
		})
	}
}

func TestCalculate_ResultBeyondFloatPrecision(t *testing.T) {
	t.Parallel()
	rec := post(t, New(testConfig()).Handler(), `{"x": 1, "y": 50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// The value must be written as an exact integer literal.
	assert.Contains(t, rec.Body.String(), `"resultado":3099044504245996706400`)
}

func TestCalculate_Rejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		body        string
		wantError   string
		wantDetails string
	}{
		{"missing y", `{"x": 1}`, "Parameters x and y are required", "Send a JSON object with the fields x and y"},
		{"empty object", `{}`, "Parameters x and y are required", ""},
		{"null body", `null`, "Parameters x and y are required", ""},
		{"string x", `{"x": "1", "y": 10}`, "x and y must be integers", "Received: x=string, y=integer"},
		{"float y", `{"x": 1, "y": 10.0}`, "x and y must be integers", "Received: x=integer, y=float"},
		{"exponent y", `{"x": 1, "y": 1e1}`, "x and y must be integers", ""},
		{"boolean x", `{"x": true, "y": 10}`, "x and y must be integers", "Received: x=boolean, y=integer"},
		{"null x", `{"x": null, "y": 10}`, "x and y must be integers", ""},
		{"negative x", `{"x": -1, "y": 5}`, "x and y must be positive numbers", "Received: x=-1, y=5"},
		{"zero x", `{"x": 0, "y": 5}`, "x and y must be positive numbers", ""},
		{"x greater than y", `{"x": 10, "y": 1}`, "x must be less than y", "Received: x=10, y=1"},
		{"x equal to y", `{"x": 7, "y": 7}`, "x must be less than y", ""},
		{"interval too large", `{"x": 1, "y": 100}`, "Interval too large", ""},
		{"interval just too large", `{"x": 1, "y": 52}`, "Interval too large", ""},
		{"not json", `x=1&y=10`, "Invalid JSON body", ""},
		{"array", `[1, 10]`, "Invalid JSON body", ""},
	}
	h := New(testConfig()).Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := post(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var got endpoint.ErrorPayload
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantError, got.Error)
			if tt.wantDetails != "" {
				assert.Equal(t, tt.wantDetails, got.Details)
			}
		})
	}
}

func TestCalculate_MaxIntervalBoundary(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MaxInterval = 3
	h := New(cfg).Handler()

	assert.Equal(t, http.StatusOK, post(t, h, `{"x": 2, "y": 5}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"x": 2, "y": 6}`).Code)
}

func TestCalculate_RateLimited(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.RateLimit, cfg.RateBurst = 1, 2
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(cfg, WithClock(func() time.Time { return now }))
	h := s.Handler()

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, post(t, h, `{"x": 1, "y": 3}`).Code)
	}
	rec := post(t, h, `{"x": 1, "y": 3}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"erro":"Too many requests"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics().calculations.WithLabelValues(resultLimited)))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, post(t, h, `{"x": 1, "y": 3}`).Code)
}

func TestHandler_Routes(t *testing.T) {
	t.Parallel()
	h := New(testConfig()).Handler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, CalculatePath, http.StatusMethodNotAllowed},
		{http.MethodOptions, CalculatePath, http.StatusNoContent},
		{http.MethodGet, "/api/unknown/", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, http.NoBody))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealth_ReportsSystemLoad(t *testing.T) {
	t.Parallel()
	h := New(testConfig(), WithSystemSampler(func() sysmon.Stats {
		return sysmon.Stats{CPUPercent: 12.5, MemPercent: 40}
	})).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","system":{"cpu_percent":12.5,"memory_percent":40}}`, rec.Body.String())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(testConfig()).Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	resp, err := http.Post(url+CalculatePath, "application/json", strings.NewReader(`{"x": 1, "y": 10}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestEndpointClientAgainstServer(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(New(testConfig()).Handler())
	t.Cleanup(srv.Close)

	client := endpoint.New(srv.URL+CalculatePath, time.Second)
	res, err := client.Calculate(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "2520", res.Value.String())
	assert.Equal(t, "1 to 10", res.IntervalLabel)
	assert.True(t, res.HasComputeTime)

	_, err = client.Calculate(context.Background(), 1, 100)
	assert.ErrorContains(t, err, "Interval too large")
}
