package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/clock"
)

// Outcome classifies a single attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmptyResponse
	OutcomeTimeout
	OutcomeTransportError
	// OutcomeCanceled means the caller's own context ended mid-attempt.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmptyResponse:
		return "empty_response"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Attempt describes one call made by the gateway. It is never persisted.
type Attempt struct {
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Outcome   Outcome
	Err       error

	text string
}

// Config configures the retry loop.
type Config struct {
	// MaxRetries is the total number of calls allowed, including the first.
	// Default: 3
	MaxRetries int

	// BaseDelay is the wait before the second attempt; it doubles after
	// every further failure. Default: 2s
	BaseDelay time.Duration

	// AttemptTimeout bounds each individual call. Default: 20s
	AttemptTimeout time.Duration

	// RetryIf reports whether a failed attempt may be retried. Failures it
	// rejects are returned immediately without touching the remaining
	// budget. Default: every failure is retried.
	RetryIf func(err error) bool

	// OnAttempt is called after every attempt.
	OnAttempt func(Attempt)
}

// DefaultConfig returns MaxRetries=3, BaseDelay=2s, AttemptTimeout=20s.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		BaseDelay:      2 * time.Second,
		AttemptTimeout: 20 * time.Second,
	}
}

// Option customises a Gateway.
type Option func(*Gateway)

// WithClock replaces the clock used for attempt timestamps and backoff waits.
func WithClock(c clock.Clock) Option {
	return func(g *Gateway) { g.clock = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithMetrics replaces the metrics recorder.
func WithMetrics(m *Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// Gateway wraps a Caller with per-attempt deadlines and exponential backoff.
type Gateway struct {
	caller  Caller
	config  Config
	clock   clock.Clock
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a Gateway around caller. Zero config fields take defaults.
func New(caller Caller, config Config, opts ...Option) *Gateway {
	def := DefaultConfig()
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = def.BaseDelay
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = def.AttemptTimeout
	}
	if config.RetryIf == nil {
		config.RetryIf = func(error) bool { return true }
	}

	g := &Gateway{
		caller: caller,
		config: config,
		clock:  clock.Real(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = NewMetrics(nil)
	}
	return g
}

// Config returns the effective configuration.
func (g *Gateway) Config() Config {
	return g.config
}

// Invoke calls the service until it yields non-blank text or the budget is
// spent. Exhaustion is reported as an *ExhaustedError matching
// ErrExhaustedRetries. If ctx ends, the loop stops and ctx.Err() is returned.
func (g *Gateway) Invoke(ctx context.Context, prompt Prompt) (string, error) {
	var last Attempt
	for i := 0; i < g.config.MaxRetries; i++ {
		last = g.attempt(ctx, i+1, prompt)
		g.metrics.recordAttempt(ctx, last)
		if g.config.OnAttempt != nil {
			g.config.OnAttempt(last)
		}

		switch last.Outcome {
		case OutcomeSuccess:
			g.logger.Info("generative call succeeded",
				zap.Int("attempt", last.Number),
				zap.Duration("duration", last.Duration))
			return last.text, nil
		case OutcomeCanceled:
			return "", last.Err
		}

		g.logger.Warn("generative call failed",
			zap.Int("attempt", last.Number),
			zap.Stringer("outcome", last.Outcome),
			zap.Duration("duration", last.Duration),
			zap.Error(last.Err))

		if !g.config.RetryIf(last.Err) {
			return "", fmt.Errorf("gateway: attempt %d not retryable: %w", last.Number, last.Err)
		}
		if i == g.config.MaxRetries-1 {
			break
		}

		delay := g.Backoff(i)
		g.logger.Info("waiting before next attempt",
			zap.Duration("delay", delay),
			zap.Int("next_attempt", i+2))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-g.clock.After(delay):
		}
	}

	g.metrics.recordExhausted(ctx)
	g.logger.Error("all generative call attempts failed",
		zap.Int("attempts", last.Number),
		zap.Stringer("last_outcome", last.Outcome))
	return "", &ExhaustedError{Attempts: last.Number, Last: last.Outcome, Err: last.Err}
}

// Backoff returns the wait after the failed attempt with zero-based index i:
// BaseDelay * 2^i, without jitter.
func (g *Gateway) Backoff(i int) time.Duration {
	return g.config.BaseDelay << uint(i)
}

type callResult struct {
	text string
	err  error
}

func (g *Gateway) attempt(ctx context.Context, n int, prompt Prompt) Attempt {
	a := Attempt{Number: n, StartedAt: g.clock.Now()}
	g.logger.Debug("generative call attempt", zap.Int("attempt", n))

	attemptCtx, cancel := context.WithTimeout(ctx, g.config.AttemptTimeout)
	defer cancel()

	// Buffered so an abandoned call can still deliver and exit.
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("gateway: caller panicked: %v", r)}
			}
		}()
		text, err := g.caller.Call(attemptCtx, prompt)
		done <- callResult{text: text, err: err}
	}()

	start := time.Now()
	select {
	case res := <-done:
		a.Duration = time.Since(start)
		switch {
		case res.err != nil:
			a.Outcome, a.Err = classifyError(ctx, attemptCtx, res.err)
		case strings.TrimSpace(res.text) == "":
			a.Outcome, a.Err = OutcomeEmptyResponse, ErrEmptyResponse
		default:
			a.Outcome, a.text = OutcomeSuccess, strings.TrimSpace(res.text)
		}
	case <-attemptCtx.Done():
		a.Duration = time.Since(start)
		if ctx.Err() != nil {
			a.Outcome, a.Err = OutcomeCanceled, ctx.Err()
		} else {
			a.Outcome, a.Err = OutcomeTimeout, ErrAttemptTimeout
		}
	}
	return a
}

// classifyError separates a caller error caused by our own deadline (a
// cooperative transport noticing it) from a genuine transport failure.
func classifyError(parent, attemptCtx context.Context, err error) (Outcome, error) {
	if parent.Err() != nil {
		return OutcomeCanceled, parent.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return OutcomeTimeout, fmt.Errorf("%w: %v", ErrAttemptTimeout, err)
	}
	return OutcomeTransportError, err
}
