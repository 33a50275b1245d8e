package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string, inspect func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCalculate_Success(t *testing.T) {
	t.Parallel()
	var got Request
	srv := newServer(t, http.StatusOK,
		`{"resultado": 2520, "intervalo": "1 to 10", "tempo_calculo": 0.0015, "mensagem": "ok"}`,
		func(r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		})

	res, err := New(srv.URL, time.Second).Calculate(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, Request{X: 1, Y: 10}, got)
	assert.Equal(t, "2520", res.Value.String())
	assert.Equal(t, "1 to 10", res.IntervalLabel)
	assert.True(t, res.HasComputeTime)
	assert.Equal(t, 1500*time.Microsecond, res.ComputeTime)
	assert.Equal(t, "ok", res.Message)
}

func TestCalculate_SuccessVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		body         string
		wantValue    string
		wantDuration bool
	}{
		{"beyond int64", `{"resultado": 5342931457063200, "intervalo": "1-40"}`, "5342931457063200", false},
		{"very large integer", `{"resultado": 3099044504245996706400, "intervalo": "1-50"}`, "3099044504245996706400", false},
		{"float notation", `{"resultado": 2.52e3, "intervalo": "1-10"}`, "2520", false},
		{"string number", `{"resultado": "2520", "intervalo": "1-10"}`, "2520", false},
		{"zero compute time", `{"resultado": 6, "intervalo": "1-3", "tempo_calculo": 0}`, "6", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, http.StatusOK, tt.body, nil)
			res, err := New(srv.URL, time.Second).Calculate(context.Background(), 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, res.Value.String())
			assert.Equal(t, tt.wantDuration, res.HasComputeTime)
		})
	}
}

func TestCalculate_EndpointErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails string
	}{
		{"custom message", http.StatusBadRequest, `{"erro": "custom message"}`, "custom message", ""},
		{"with details", http.StatusInternalServerError, `{"erro": "Internal error", "detalhes": "boom"}`, "Internal error", "boom"},
		{"no message", http.StatusBadRequest, `{}`, "", ""},
		{"rate limited", http.StatusTooManyRequests, `{"erro": "slow down"}`, "slow down", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, tt.status, tt.body, nil)
			_, err := New(srv.URL, time.Second).Calculate(context.Background(), 1, 10)

			var endpointErr apperrors.EndpointError
			require.ErrorAs(t, err, &endpointErr)
			assert.Equal(t, tt.status, endpointErr.Status)
			assert.Equal(t, tt.wantMessage, endpointErr.Message)
			assert.Equal(t, tt.wantDetails, endpointErr.Details)
		})
	}
}

func TestCalculate_TransportErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"empty failure body", http.StatusServiceUnavailable, ``},
		{"success without resultado", http.StatusOK, `{"intervalo": "1-10"}`},
		{"success not json", http.StatusOK, `2520 ok`},
		{"fractional resultado", http.StatusOK, `{"resultado": 12.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, tt.status, tt.body, nil)
			_, err := New(srv.URL, time.Second).Calculate(context.Background(), 1, 10)

			var transportErr apperrors.TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, apperrors.ExitErrorTransport, apperrors.ExitCodeFor(err))
		})
	}
}

func TestCalculate_ConnectionRefused(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = New("http://"+addr+"/api/calcular-mmc/", time.Second).Calculate(context.Background(), 1, 10)

	var transportErr apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	var opErr *net.OpError
	assert.ErrorAs(t, err, &opErr)
	var timeoutErr apperrors.TimeoutError
	assert.False(t, errors.As(err, &timeoutErr), "a refused connection is not a timeout")
	assert.Equal(t, apperrors.ExitErrorTransport, apperrors.ExitCodeFor(err))
}

func TestCalculate_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	_, err := New(srv.URL, 50*time.Millisecond).Calculate(context.Background(), 1, 10)

	var transportErr apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	var timeoutErr apperrors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.Limit)
	assert.Equal(t, apperrors.ExitErrorTimeout, apperrors.ExitCodeFor(err))
}

func TestCalculate_ContextCanceled(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.StatusOK, `{"resultado": 2520}`, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, time.Second).Calculate(ctx, 1, 10)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, apperrors.ExitErrorCanceled, apperrors.ExitCodeFor(err))
}

func TestCalculate_LogsAtDebug(t *testing.T) {
	t.Parallel()
	srv := newServer(t, http.StatusBadRequest, `{"erro": "x must be less than y"}`, nil)
	var buf bytes.Buffer
	logger := logging.NewConsoleLogger(&buf, "endpoint", logging.ParseLevel("debug"))

	_, err := New(srv.URL, time.Second, WithLogger(logger)).Calculate(context.Background(), 5, 5)

	require.Error(t, err)
	assert.Contains(t, buf.String(), "calculation request failed")
	assert.Contains(t, buf.String(), "x must be less than y")
}

func TestNew_Options(t *testing.T) {
	t.Parallel()
	hc := &http.Client{}
	c := New("http://localhost:8000/api/calcular-mmc/", time.Second, WithHTTPClient(hc))
	assert.Same(t, hc, c.http)
	assert.Equal(t, "http://localhost:8000/api/calcular-mmc/", c.URL())
}
