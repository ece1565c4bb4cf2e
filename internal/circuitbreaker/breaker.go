package circuitbreaker

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/vaultkv/internal/observability"
	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the state of the breaker.
type State = gobreaker.State

// Executor decorates a vault.Executor with a circuit breaker. Only failures
// to get a response count against the circuit; any HTTP status, including
// a sealed or standby health answer, is a success for the transport.
type Executor struct {
	next    vault.Executor
	cb      *gobreaker.CircuitBreaker
	name    string
	logger  observability.Logger
	metrics *Metrics
}

// Option is a functional option for configuring the Executor.
type Option func(*Executor)

// WithLogger sets the logger for state changes.
func WithLogger(logger observability.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics records breaker state and rejections.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// NewExecutor wraps next with a circuit breaker named name.
func NewExecutor(name string, cfg *Config, next vault.Executor, opts ...Option) *Executor {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := &Executor{
		next:   next,
		name:   name,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	threshold := safeIntToUint32(cfg.Threshold)
	ratio := cfg.FailureRatio

	e.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: threshold,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < threshold {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			e.logger.Warn("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
			if e.metrics != nil {
				e.metrics.RecordStateChange(name, from, to)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	if e.metrics != nil {
		e.metrics.SetState(name, gobreaker.StateClosed)
	}

	return e
}

// Execute implements vault.Executor.
func (e *Executor) Execute(ctx context.Context, req *vault.Request) (*vault.Response, error) {
	result, err := e.cb.Execute(func() (any, error) {
		return e.next.Execute(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			if e.metrics != nil {
				e.metrics.RecordRejected(e.name)
			}
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, e.name)
		}
		return nil, err
	}

	resp, ok := result.(*vault.Response)
	if !ok {
		return nil, fmt.Errorf("circuitbreaker: unexpected result type %T", result)
	}
	return resp, nil
}

// State returns the current state of the breaker.
func (e *Executor) State() State {
	return e.cb.State()
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

var _ vault.Executor = (*Executor)(nil)
