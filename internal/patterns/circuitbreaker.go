package patterns

import (
	"errors"
	"fmt"
	"time"

	"honeystore/internal/metrics"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrRejected marks an upstream answer that arrived but refused the request.
// The breaker records it as a success so bad input cannot open the circuit.
var ErrRejected = errors.New("upstream rejected request")

// CircuitBreakerWrapper wraps gobreaker with metrics.
type CircuitBreakerWrapper struct {
	*gobreaker.CircuitBreaker
	name    string
	service string
}

func NewCircuitBreaker(name, service string, logger *logrus.Logger) *CircuitBreakerWrapper {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(service, cbName).Set(float64(stateValue(to)))

			logger.WithFields(logrus.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(service, name).Set(0)

	return &CircuitBreakerWrapper{
		CircuitBreaker: cb,
		name:           name,
		service:        service,
	}
}

// Execute runs fn through the breaker and counts failures.
func (cb *CircuitBreakerWrapper) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cb.CircuitBreaker.Execute(fn)
	if !countsAsSuccess(err) {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.service, cb.name).Inc()
	}
	return result, err
}

func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrRejected)
}

func (cb *CircuitBreakerWrapper) GetState() string {
	return cb.State().String()
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return -1
	}
}

// IsOpen reports whether err came from the breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func FormatError(circuitName string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("circuit breaker %s is open (service unavailable): %w", circuitName, err)
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("circuit breaker %s: too many requests in half-open state: %w", circuitName, err)
	}
	return err
}
