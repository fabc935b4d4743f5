// Package riskshield implements the HTTP client for the RiskShield scoring
// upstream. The client layers a circuit breaker over a bounded retry loop:
// each scoring call is admitted by the breaker, attempted up to the configured
// number of times with exponential backoff, and settled against the breaker
// as a single success or failure.
package riskshield

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"riskgate/internal/platform/config"
	"riskgate/internal/platform/metrics"
	"riskgate/internal/riskshield/tracer"
	"riskgate/pkg/circuit"
	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/requestcontext"
	"riskgate/pkg/validation"
)

const scorePath = "/v1/score"

// APIKeyHeader authenticates the gateway to the scoring upstream.
const APIKeyHeader = "X-API-Key"

// KeySource resolves the upstream API key and supports invalidation when the
// upstream rejects it as unauthorized.
type KeySource interface {
	Get(ctx context.Context, name string) (string, error)
	Invalidate(name string)
}

// ScoreRequest is the outbound scoring payload.
type ScoreRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IDNumber  string `json:"idNumber"`
}

// ScoreResult is the upstream's scoring verdict.
type ScoreResult struct {
	RiskScore int    `json:"riskScore"`
	RiskLevel string `json:"riskLevel"`
}

// Client calls the RiskShield scoring API.
type Client struct {
	baseURL    string
	keyName    string
	keys       KeySource
	httpClient *http.Client
	breaker    *circuit.Breaker

	maxAttempts    int
	attemptTimeout time.Duration
	backoffInitial time.Duration
	backoffMax     time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	sleep   func(ctx context.Context, d time.Duration) error
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client. Tests use this to point at a
// local fake upstream.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBreaker injects a circuit breaker, letting tests drive its clock.
func WithBreaker(b *circuit.Breaker) ClientOption {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithTracer overrides the tracer. Default is a no-op tracer.
func WithTracer(t tracer.Tracer) ClientOption {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMetrics attaches Prometheus metrics to the client.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithSleep overrides the backoff sleep function so tests can observe waits
// without real delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a scoring client from the upstream configuration.
//
// The transport maps the configured phase timeouts onto Go's HTTP client:
// connection establishment and TLS handshake get ConnectTimeout, each write
// on the connection is bounded by WriteTimeout, waiting for response headers
// gets ReadTimeout, and idle pooled connections are closed after PoolTimeout.
func New(cfg config.Upstream, keys KeySource, logger *slog.Logger, opts ...ClientOption) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if cfg.WriteTimeout > 0 {
				conn = &writeDeadlineConn{Conn: conn, timeout: cfg.WriteTimeout}
			}
			return conn, nil
		},
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		IdleConnTimeout:       cfg.PoolTimeout,
		MaxIdleConnsPerHost:   10,
	}

	c := &Client{
		baseURL:        cfg.BaseURL,
		keyName:        cfg.APIKeySecret,
		keys:           keys,
		httpClient:     &http.Client{Transport: transport},
		breaker:        circuit.New("riskshield", circuit.WithFailureThreshold(cfg.BreakerThreshold), circuit.WithCooldown(cfg.BreakerCooldown)),
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: cfg.AttemptTimeout,
		backoffInitial: cfg.BackoffInitial,
		backoffMax:     cfg.BackoffMax,
		logger:         logger,
		tracer:         tracer.NewNoop(),
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breaker exposes the circuit breaker for the admin reset endpoint and
// readiness checks.
func (c *Client) Breaker() *circuit.Breaker {
	return c.breaker
}

// Score submits an applicant for risk scoring. One call is one breaker
// admission: retries happen inside, and only the final outcome settles the
// breaker. Failures map to domain error codes the HTTP layer translates.
func (c *Client) Score(ctx context.Context, req ScoreRequest) (result *ScoreResult, err error) {
	correlationID := requestcontext.CorrelationID(ctx)

	ctx, span := c.tracer.Start(ctx, tracer.SpanScore,
		tracer.String(tracer.AttrIDNumberHash, tracer.HashIDNumber(req.IDNumber)),
		tracer.String(tracer.AttrCorrelationID, correlationID),
	)
	defer func() { span.End(err) }()

	// The key is resolved before the breaker admission so a secret store
	// outage surfaces as its own failure mode instead of tripping the circuit.
	apiKey, err := c.keys.Get(ctx, c.keyName)
	if err != nil {
		return nil, err
	}

	if allowErr := c.breaker.Allow(); allowErr != nil {
		span.AddEvent(tracer.EventCircuitOpen)
		c.logger.WarnContext(ctx, "scoring call rejected, circuit open",
			"correlation_id", correlationID,
		)
		return nil, dErrors.Wrap(allowErr, dErrors.CodeCircuitOpen, "scoring service temporarily unavailable")
	}

	start := time.Now()
	result, scoreErr := c.scoreWithRetry(ctx, span, req, apiKey, correlationID)
	c.observeLatency(time.Since(start))

	if scoreErr != nil {
		// Only outage-shaped failures (timeouts, connection errors, 429 and
		// 5xx responses) count against the breaker. A 4xx or a malformed body
		// means the upstream answered, so the admission settles without
		// touching the failure count.
		if IsRetryable(scoreErr) {
			if change := c.breaker.RecordFailure(); change.Opened {
				c.recordCircuitOpen(ctx, correlationID)
			}
		} else if change := c.breaker.RecordNeutral(); change.Closed {
			c.logger.InfoContext(ctx, "circuit closed, upstream responsive again",
				"correlation_id", correlationID,
			)
		}
		c.setCircuitGauge()
		return nil, translateUpstreamError(scoreErr)
	}

	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit closed after successful probe",
			"correlation_id", correlationID,
		)
	}
	c.setCircuitGauge()
	return result, nil
}

// scoreWithRetry runs the attempt loop. Only retryable failures (timeouts,
// connection errors, 429 and 5xx responses) consume additional attempts;
// anything else returns immediately.
func (c *Client) scoreWithRetry(ctx context.Context, span tracer.Span, req ScoreRequest, apiKey, correlationID string) (*ScoreResult, error) {
	var lastErr error
	delay := c.backoffInitial

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			span.AddEvent(tracer.EventRetryScheduled, tracer.Duration(tracer.AttrBackoff, delay))
			if c.metrics != nil {
				c.metrics.UpstreamRetries.Inc()
			}
			c.logger.InfoContext(ctx, "retrying scoring call",
				"attempt", attempt,
				"backoff", delay.String(),
				"correlation_id", correlationID,
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, ClassifyTransportError(err)
			}
			delay *= 2
			if delay > c.backoffMax {
				delay = c.backoffMax
			}
		}

		result, err := c.doAttempt(ctx, req, apiKey, attempt, correlationID)
		if err == nil {
			c.recordAttempt("success")
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			c.recordAttempt("failed")
			c.logger.WarnContext(ctx, "scoring attempt failed permanently",
				"attempt", attempt,
				"category", string(GetCategory(err)),
				"correlation_id", correlationID,
			)
			return nil, err
		}

		c.recordAttempt("retryable")
		c.logger.WarnContext(ctx, "scoring attempt failed",
			"attempt", attempt,
			"category", string(GetCategory(err)),
			"correlation_id", correlationID,
		)
	}

	return nil, lastErr
}

// doAttempt performs a single HTTP call under the per-attempt deadline.
func (c *Client) doAttempt(ctx context.Context, req ScoreRequest, apiKey string, attempt int, correlationID string) (_ *ScoreResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, tracer.SpanAttempt,
		tracer.Int64(tracer.AttrAttempt, int64(attempt)),
	)
	defer func() { span.End(err) }()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not encode scoring request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scorePath, bytes.NewReader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not build scoring request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(APIKeyHeader, apiKey)
	if correlationID != "" {
		httpReq.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(resp.StatusCode)))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		statusErr := ClassifyStatus(resp.StatusCode)
		if statusErr.Category == ErrorAuthentication {
			c.keys.Invalidate(c.keyName)
			c.logger.ErrorContext(ctx, "upstream rejected API key, cache invalidated",
				"status", resp.StatusCode,
				"correlation_id", correlationID,
			)
		}
		span.SetAttributes(tracer.Bool(tracer.AttrRetryable, statusErr.Retryable))
		return nil, statusErr
	}

	var result ScoreResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, NewUpstreamError(ErrorBadData, resp.StatusCode, "could not decode scoring response", err)
	}
	if result.RiskScore < 0 || result.RiskScore > 100 {
		return nil, NewUpstreamError(ErrorBadData, resp.StatusCode,
			fmt.Sprintf("risk score %d out of range", result.RiskScore), nil)
	}

	c.logger.InfoContext(ctx, "scoring call succeeded",
		"attempt", attempt,
		"id_number", validation.MaskID(req.IDNumber),
		"risk_score", result.RiskScore,
		"correlation_id", correlationID,
	)
	return &result, nil
}

// writeDeadlineConn bounds each write on the underlying connection so a
// stalled peer cannot hold a request-body write open indefinitely.
type writeDeadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *writeDeadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

func (c *Client) recordAttempt(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamAttempt(outcome)
	}
}

func (c *Client) observeLatency(d time.Duration) {
	if c.metrics != nil {
		c.metrics.ScoreLatency.Observe(d.Seconds())
	}
}

func (c *Client) setCircuitGauge() {
	if c.metrics != nil {
		c.metrics.SetCircuitState(float64(c.breaker.State()))
	}
}

func (c *Client) recordCircuitOpen(ctx context.Context, correlationID string) {
	if c.metrics != nil {
		c.metrics.CircuitOpens.Inc()
	}
	c.logger.ErrorContext(ctx, "circuit opened for scoring upstream",
		"correlation_id", correlationID,
	)
}

// translateUpstreamError maps the client's failure taxonomy onto domain error
// codes for the HTTP layer. Domain errors from lower layers (secret
// resolution) pass through untouched.
func translateUpstreamError(err error) error {
	if dErrors.HasCode(err, dErrors.CodeSecretUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
		return err
	}

	switch GetCategory(err) {
	case ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "scoring service timed out")
	case ErrorAuthentication, ErrorBadStatus, ErrorBadData:
		return dErrors.Wrap(err, dErrors.CodeUpstreamRejected, "scoring service rejected the request")
	default:
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "scoring service unavailable")
	}
}
