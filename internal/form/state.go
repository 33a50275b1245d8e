package form

import (
	"math/big"
	"time"
)

// Request-level failure messages.
const (
	// MsgEndpointFallback is shown when the endpoint rejects a request without
	// describing why.
	MsgEndpointFallback = "Failed to calculate the result"
	// MsgTransportFailure is shown when the endpoint cannot be reached or its
	// answer cannot be understood.
	MsgTransportFailure = "Connection error. Make sure the calculation server is running and reachable."
)

// Result is a successful calculation as reported by the endpoint.
type Result struct {
	// Value is the least common multiple of every integer in the interval.
	Value *big.Int
	// IntervalLabel describes the interval the endpoint used.
	IntervalLabel string
	// ComputeTime is the server-side computation time, valid when
	// HasComputeTime is set.
	ComputeTime    time.Duration
	HasComputeTime bool
	// Message is an optional human-readable note from the endpoint.
	Message string
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	if r.Value != nil {
		r.Value = new(big.Int).Set(r.Value)
	}
	return r
}

// Outcome classifies how a submission attempt ended.
type Outcome int

const (
	// OutcomeRejected means validation failed and no request was made.
	OutcomeRejected Outcome = iota
	// OutcomeSuccess means a Result was stored.
	OutcomeSuccess
	// OutcomeEndpointError means the endpoint answered with a failure status.
	OutcomeEndpointError
	// OutcomeTransportError means the endpoint was unreachable or its answer
	// was unusable.
	OutcomeTransportError
	// OutcomeBusy means a submission was already in flight.
	OutcomeBusy
	// OutcomeIgnored means the session was closed or there was nothing to
	// complete.
	OutcomeIgnored
)

var outcomeNames = [...]string{
	OutcomeRejected:       "rejected",
	OutcomeSuccess:        "success",
	OutcomeEndpointError:  "endpoint_error",
	OutcomeTransportError: "transport_error",
	OutcomeBusy:           "busy",
	OutcomeIgnored:        "ignored",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Snapshot is a read-only copy of the presentation state. Mutating a
// Snapshot has no effect on the Session it came from.
type Snapshot struct {
	X, Y         string
	FieldErrors  Errors
	Loading      bool
	Result       *Result
	ErrorMessage string
	// Submitted is set once a request has been issued in this session.
	Submitted bool
}

// Value returns the raw text of f.
func (s Snapshot) Value(f Field) string {
	if f == FieldY {
		return s.Y
	}
	return s.X
}

// FieldError returns the message shown next to f, or "".
func (s Snapshot) FieldError(f Field) string {
	return s.FieldErrors[f]
}

// Settled reports whether the last submission finished with a result or a
// failure message.
func (s Snapshot) Settled() bool {
	return !s.Loading && (s.Result != nil || s.ErrorMessage != "")
}

// Recorder receives one observation per finished submission attempt.
type Recorder interface {
	ObserveSubmission(outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(Outcome, time.Duration) {}
