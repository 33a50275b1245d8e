// Package server implements a reference version of the remote LCM endpoint so
// that the client can be exercised locally without a separate backend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agbru/lcmform/internal/endpoint"
	"github.com/agbru/lcmform/internal/logging"
	"github.com/agbru/lcmform/internal/sysmon"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// CalculatePath is the route of the calculation endpoint.
const CalculatePath = "/api/calcular-mmc/"

const (
	maxRequestBytes        = 4 << 10
	defaultShutdownTimeout = 10 * time.Second
	limiterIdleTTL         = 10 * time.Minute
)

// Config holds the server settings.
type Config struct {
	Addr string
	// MaxInterval is the largest accepted y - x.
	MaxInterval int64
	// RateLimit and RateBurst configure the per-client token bucket. A
	// non-positive RateLimit disables rate limiting.
	RateLimit       float64
	RateBurst       int
	Security        SecurityConfig
	ShutdownTimeout time.Duration
}

// Server answers LCM calculation requests over HTTP.
type Server struct {
	cfg     Config
	metrics *Metrics
	logger  logging.Logger
	limiter *clientLimiter
	now     func() time.Time
	sample  sysmon.Sampler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces the clock used by the rate limiter.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSystemSampler replaces the host load sampler reported by /healthz.
func WithSystemSampler(fn sysmon.Sampler) Option {
	return func(s *Server) { s.sample = fn }
}

// New creates a server. Nothing listens until Serve or ListenAndServe is called.
func New(cfg Config, opts ...Option) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		cfg:     cfg,
		metrics: NewMetrics(),
		logger:  logging.NewNop(),
		limiter: newClientLimiter(cfg.RateLimit, cfg.RateBurst, limiterIdleTTL),
		now:     time.Now,
		sample:  sysmon.Sample,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the collectors of this server.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	calculate := SecurityMiddleware(s.cfg.Security,
		s.metricsMiddleware(s.rateLimitMiddleware(s.handleCalculate)))
	r.Post(CalculatePath, calculate)
	r.Options(CalculatePath, calculate)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowed(SecurityMiddleware(s.cfg.Security, func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "Use POST")
	}))
	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("reference server listening", logging.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("reference server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// healthPayload is the body of GET /healthz.
type healthPayload struct {
	Status string       `json:"status"`
	System sysmon.Stats `json:"system"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthPayload{Status: "ok", System: s.sample()})
}

// requestError is a 4xx answer produced while reading the request.
type requestError struct {
	message string
	details string
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%v", rec)
			s.logger.Error("calculation panicked", err)
			s.metrics.ObserveCalculation(resultError, 0)
			writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	x, y, reqErr := s.decodeRequest(r)
	if reqErr != nil {
		s.metrics.ObserveCalculation(resultRejected, 0)
		s.logger.Debug("calculation rejected",
			logging.String("error", reqErr.message), logging.String("details", reqErr.details))
		writeError(w, http.StatusBadRequest, reqErr.message, reqErr.details)
		return
	}

	start := time.Now()
	value, err := IntervalLCM(r.Context(), x, y)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveCalculation(resultError, 0)
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("client went away during calculation")
			return
		}
		s.logger.Error("calculation failed", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	s.metrics.ObserveCalculation(resultSuccess, elapsed)
	s.logger.Info("calculation succeeded",
		logging.String("x", x.String()), logging.String("y", y.String()),
		logging.Float64("seconds", elapsed.Seconds()))

	seconds := elapsed.Seconds()
	writeJSON(w, http.StatusOK, endpoint.SuccessPayload{
		Result:      json.Number(value.String()),
		Interval:    fmt.Sprintf("%s to %s", x, y),
		ComputeTime: &seconds,
		Message:     fmt.Sprintf("LCM of every number in the interval [%s, %s] calculated successfully", x, y),
	})
}

// decodeRequest applies the endpoint's checks in order: presence, JSON type,
// sign, ordering, then interval width.
func (s *Server) decodeRequest(r *http.Request) (x, y *big.Int, reqErr *requestError) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, nil, &requestError{"Invalid JSON body", err.Error()}
	}

	rawX, okX := body["x"]
	rawY, okY := body["y"]
	if !okX || !okY {
		return nil, nil, &requestError{"Parameters x and y are required", "Send a JSON object with the fields x and y"}
	}

	x, xInt := asInteger(rawX)
	y, yInt := asInteger(rawY)
	if !xInt || !yInt {
		return nil, nil, &requestError{"x and y must be integers",
			fmt.Sprintf("Received: x=%s, y=%s", jsonType(rawX), jsonType(rawY))}
	}

	received := fmt.Sprintf("Received: x=%s, y=%s", x, y)
	if x.Sign() <= 0 || y.Sign() <= 0 {
		return nil, nil, &requestError{"x and y must be positive numbers", received}
	}
	if x.Cmp(y) >= 0 {
		return nil, nil, &requestError{"x must be less than y", received}
	}
	if width := new(big.Int).Sub(y, x); width.Cmp(big.NewInt(s.cfg.MaxInterval)) > 0 {
		return nil, nil, &requestError{"Interval too large",
			fmt.Sprintf("Use an interval of at most %d numbers to avoid performance problems", s.cfg.MaxInterval)}
	}
	return x, y, nil
}

// asInteger accepts JSON numbers written without fraction or exponent.
func asInteger(v any) (*big.Int, bool) {
	n, ok := v.(json.Number)
	if !ok || strings.ContainsAny(n.String(), ".eE") {
		return nil, false
	}
	return new(big.Int).SetString(n.String(), 10)
}

func jsonType(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number:
		if _, ok := asInteger(t); ok {
			return "integer"
		}
		return "float"
	case []any:
		return "array"
	default:
		return "object"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, endpoint.ErrorPayload{Error: message, Details: details})
}
