package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the breaker rejects calls.
var ErrUnavailable = errors.New("suggestion provider unavailable")

// BreakerSettings configures the circuit breaker around a provider.
type BreakerSettings struct {
	Name        string        `yaml:"name"`
	MaxRequests uint32        `yaml:"max_requests"` // Requests allowed while half-open
	Interval    time.Duration `yaml:"interval"`     // Closed-state window for clearing counts
	Timeout     time.Duration `yaml:"timeout"`      // Open-state duration before half-open
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests have been observed.
	FailureThreshold float64 `yaml:"failure_threshold"`
	MinRequests      uint32  `yaml:"min_requests"`
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "suggest",
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// Breaker wraps a Provider in a circuit breaker.
type Breaker struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. State changes are logged at warn level.
func NewBreaker(next Provider, settings BreakerSettings, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Suggestion breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// A caller abandoning the request says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb}
}

// Suggest forwards to the wrapped provider unless the breaker is open.
func (b *Breaker) Suggest(ctx context.Context, parent *string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Suggest(ctx, parent)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return out.(string), nil
}

// State returns the breaker state name (closed, half-open, open).
func (b *Breaker) State() string {
	return b.cb.State().String()
}
