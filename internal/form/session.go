//go:generate mockgen -source=session.go -destination=mocks/mock_client.go -package=mocks

package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/logging"
)

// Client performs one calculation request against the remote endpoint.
// Failures are reported as apperrors.EndpointError when the endpoint answered
// with a failure status and as apperrors.TransportError otherwise.
type Client interface {
	Calculate(ctx context.Context, x, y int64) (Result, error)
}

var (
	// ErrValidation is returned by Begin when the current values are not
	// submittable. The field errors are stored on the session.
	ErrValidation = errors.New("form input is invalid")
	// ErrSubmissionInFlight is returned by Begin while a previous submission
	// has not completed.
	ErrSubmissionInFlight = errors.New("submission in flight")
	// ErrSessionClosed is returned by Begin after Close.
	ErrSessionClosed = errors.New("session closed")
)

// Session owns the presentation state of one form. All mutations go through
// SetField, Begin, Complete and Submit, which serialize on an internal mutex.
type Session struct {
	client    Client
	logger    logging.Logger
	recorder  Recorder
	observers []func(Snapshot)
	now       func() time.Time

	mu        sync.Mutex
	x, y      string
	errs      Errors
	loading   bool
	result    *Result
	errMsg    string
	submitted bool
	inFlight  bool
	closed    bool
	cancel    context.CancelFunc
	started   time.Time
}

// Option configures a Session during construction.
type Option func(*Session)

// WithLogger sets the logger used for submission events.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithRecorder sets the sink for per-submission observations.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithObserver registers fn to receive a fresh Snapshot after every
// mutation. Observers run outside the session lock and may call back into
// the session.
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) { s.observers = append(s.observers, fn) }
}

// WithValues pre-fills the two fields.
func WithValues(x, y string) Option {
	return func(s *Session) { s.x, s.y = x, y }
}

// NewSession creates an idle session that submits through client.
func NewSession(client Client, opts ...Option) *Session {
	s := &Session{
		client:   client,
		logger:   logging.NewNop(),
		recorder: nopRecorder{},
		now:      time.Now,
		errs:     Errors{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current presentation state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		X:            s.x,
		Y:            s.y,
		FieldErrors:  s.errs.Clone(),
		Loading:      s.loading,
		ErrorMessage: s.errMsg,
		Submitted:    s.submitted,
	}
	if s.result != nil {
		r := s.result.Clone()
		snap.Result = &r
	}
	return snap
}

// InFlight reports whether a submission has begun and not yet completed.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) notify(snap Snapshot) {
	for _, fn := range s.observers {
		fn(snap)
	}
}

// SetField stores the raw text of f and clears any error shown for it. The
// new value is not re-validated.
func (s *Session) SetField(f Field, raw string) {
	s.mu.Lock()
	switch f {
	case FieldX:
		s.x = raw
	case FieldY:
		s.y = raw
	default:
		s.mu.Unlock()
		return
	}
	delete(s.errs, f)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Begin validates the current values and, if they are submittable, moves the
// session into the loading state. The returned context is derived from ctx
// and is canceled by Close or when the submission completes; the request
// must be issued with it. Every successful Begin must be paired with a call
// to Complete.
func (s *Session) Begin(ctx context.Context) (context.Context, Input, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ctx, Input{}, ErrSessionClosed
	case s.inFlight:
		s.mu.Unlock()
		return ctx, Input{}, ErrSubmissionInFlight
	}

	input, errs := ParseInput(s.x, s.y)
	s.errs = errs
	if len(errs) > 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Debug("submission rejected", logging.Int("field_errors", len(errs)))
		s.recorder.ObserveSubmission(OutcomeRejected, 0)
		s.notify(snap)
		return ctx, Input{}, ErrValidation
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.errMsg = ""
	s.result = nil
	s.loading = true
	s.inFlight = true
	s.submitted = true
	s.cancel = cancel
	s.started = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("submission started", logging.Int64("x", input.X), logging.Int64("y", input.Y))
	s.notify(snap)
	return reqCtx, input, nil
}

// Complete applies the outcome of the request started by Begin. The loading
// state is always cleared, including when applying the outcome panics.
func (s *Session) Complete(res Result, err error) Outcome {
	s.mu.Lock()
	if !s.inFlight {
		s.mu.Unlock()
		return OutcomeIgnored
	}

	outcome, elapsed := s.applyLocked(res, err)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.recorder.ObserveSubmission(outcome, elapsed)
	switch outcome {
	case OutcomeSuccess:
		s.logger.Info("submission succeeded",
			logging.String("interval", res.IntervalLabel),
			logging.Float64("elapsed_seconds", elapsed.Seconds()))
	default:
		s.logger.Error("submission failed", err,
			logging.String("outcome", outcome.String()),
			logging.Float64("elapsed_seconds", elapsed.Seconds()))
	}
	s.notify(snap)
	return outcome
}

func (s *Session) applyLocked(res Result, err error) (outcome Outcome, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.result = nil
			s.errMsg = MsgTransportFailure
			outcome = OutcomeTransportError
		}
		s.loading = false
		s.inFlight = false
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		elapsed = s.now().Sub(s.started)
	}()

	var endpointErr apperrors.EndpointError
	switch {
	case err == nil && res.Value != nil:
		stored := res.Clone()
		s.result = &stored
		s.errMsg = ""
		return OutcomeSuccess, 0
	case errors.As(err, &endpointErr):
		s.result = nil
		s.errMsg = endpointErr.Message
		if s.errMsg == "" {
			s.errMsg = MsgEndpointFallback
		}
		return OutcomeEndpointError, 0
	default:
		s.result = nil
		s.errMsg = MsgTransportFailure
		return OutcomeTransportError, 0
	}
}

// Submit runs a complete submission: validation, one request through the
// client, and application of the outcome. It returns once the session is
// idle again.
func (s *Session) Submit(ctx context.Context) Outcome {
	reqCtx, input, err := s.Begin(ctx)
	switch {
	case errors.Is(err, ErrValidation):
		return OutcomeRejected
	case errors.Is(err, ErrSubmissionInFlight):
		return OutcomeBusy
	case err != nil:
		return OutcomeIgnored
	}
	res, callErr := s.Request(reqCtx, input)
	return s.Complete(res, callErr)
}

// Request issues the endpoint call for a submission started with Begin. It
// does not touch the session state, so event loops may run it on another
// goroutine and hand the outcome to Complete. A panicking client is reported
// as a TransportError.
func (s *Session) Request(ctx context.Context, input Input) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, apperrors.TransportError{Cause: fmt.Errorf("client panic: %v", r)}
		}
	}()
	return s.client.Calculate(ctx, input.X, input.Y)
}

// Close cancels any in-flight request and refuses further submissions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
}
