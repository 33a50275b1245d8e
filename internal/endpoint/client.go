// Package endpoint implements the HTTP contract of the remote LCM calculation
// service.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/agbru/lcmform/internal/form"
	"github.com/agbru/lcmform/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agbru/lcmform/internal/endpoint"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Request is the JSON body sent to the endpoint.
type Request struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

// SuccessPayload is the JSON body of a 2xx response.
type SuccessPayload struct {
	Result      json.Number `json:"resultado"`
	Interval    string      `json:"intervalo"`
	ComputeTime *float64    `json:"tempo_calculo,omitempty"`
	Message     string      `json:"mensagem,omitempty"`
}

// ErrorPayload is the JSON body of a non-2xx response.
type ErrorPayload struct {
	Error   string `json:"erro,omitempty"`
	Details string `json:"detalhes,omitempty"`
}

// HTTPClient posts calculation requests to a fixed URL.
type HTTPClient struct {
	url    string
	http   *http.Client
	logger logging.Logger
	tracer trace.Tracer
}

var _ form.Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. The timeout passed to
// New is not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithTracerProvider sets the OpenTelemetry provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *HTTPClient) { c.tracer = tp.Tracer(tracerName) }
}

// New returns a client for the endpoint at url. timeout bounds each request,
// including reading the response body.
func New(url string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		logger: logging.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint address.
func (c *HTTPClient) URL() string { return c.url }

// Calculate posts {x, y} and decodes the answer. A non-2xx status yields an
// apperrors.EndpointError; network failures and unusable bodies yield an
// apperrors.TransportError.
func (c *HTTPClient) Calculate(ctx context.Context, x, y int64) (form.Result, error) {
	ctx, span := c.tracer.Start(ctx, "endpoint.calculate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.url", c.url),
			attribute.Int64("lcm.x", x),
			attribute.Int64("lcm.y", y),
		))
	defer span.End()

	res, status, err := c.do(ctx, x, y)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("calculation request failed",
			logging.String("url", c.url), logging.Int("status", status), logging.Err(err))
		return form.Result{}, err
	}
	c.logger.Debug("calculation request succeeded",
		logging.String("url", c.url), logging.Int("status", status), logging.String("interval", res.IntervalLabel))
	return res, nil
}

func (c *HTTPClient) do(ctx context.Context, x, y int64) (form.Result, int, error) {
	body, err := json.Marshal(Request{X: x, Y: y})
	if err != nil {
		return form.Result{}, 0, apperrors.TransportError{Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return form.Result{}, 0, apperrors.TransportError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return form.Result{}, 0, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return form.Result{}, resp.StatusCode, c.transportError(ctx, apperrors.WrapError(err, "reading response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return form.Result{}, resp.StatusCode, decodeFailure(resp.StatusCode, data)
	}
	res, err := decodeSuccess(data)
	return res, resp.StatusCode, err
}

// transportError wraps a failed exchange. When the client's own timeout
// expired while ctx was still live, the cause is an apperrors.TimeoutError so
// callers can tell a slow endpoint from an unreachable one.
func (c *HTTPClient) transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if ctx.Err() == nil && errors.As(err, &netErr) && netErr.Timeout() {
		timeout := apperrors.TimeoutError{Operation: "calculate", Limit: c.http.Timeout}
		return apperrors.TransportError{Cause: fmt.Errorf("%w: %w", timeout, err)}
	}
	return apperrors.TransportError{Cause: err}
}

// decodeFailure builds the EndpointError for a non-2xx answer. A body that is
// not a JSON object means the answer did not come from the calculation
// service (a proxy page, an empty 502) and is reported as a transport error.
func decodeFailure(status int, data []byte) error {
	var payload ErrorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return apperrors.TransportError{Cause: apperrors.WrapError(err, "status %d with unreadable body", status)}
	}
	return apperrors.EndpointError{
		Status:  status,
		Message: strings.TrimSpace(payload.Error),
		Details: strings.TrimSpace(payload.Details),
	}
}

var errMissingResult = errors.New("response has no resultado field")

func decodeSuccess(data []byte) (form.Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload SuccessPayload
	if err := dec.Decode(&payload); err != nil {
		return form.Result{}, apperrors.TransportError{Cause: apperrors.WrapError(err, "decoding response")}
	}
	if payload.Result == "" {
		return form.Result{}, apperrors.TransportError{Cause: errMissingResult}
	}
	value, err := parseResult(payload.Result)
	if err != nil {
		return form.Result{}, apperrors.TransportError{Cause: err}
	}

	res := form.Result{
		Value:         value,
		IntervalLabel: payload.Interval,
		Message:       payload.Message,
	}
	if payload.ComputeTime != nil && *payload.ComputeTime >= 0 {
		res.ComputeTime = time.Duration(*payload.ComputeTime * float64(time.Second))
		res.HasComputeTime = true
	}
	return res, nil
}

// parseResult converts the JSON number into an integer. Servers that emit the
// value as a float (e.g. 3.099044504245996e+21) are accepted as long as the
// value is integral.
func parseResult(n json.Number) (*big.Int, error) {
	if v, ok := new(big.Int).SetString(n.String(), 10); ok {
		return v, nil
	}
	f, _, err := big.ParseFloat(n.String(), 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("resultado %q is not a number: %w", n, err)
	}
	if !f.IsInt() {
		return nil, fmt.Errorf("resultado %q is not an integer", n)
	}
	v, _ := f.Int(nil)
	return v, nil
}
