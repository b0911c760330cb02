package tmdb

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/justestif/go-moodflix/internal/logging"
	"github.com/justestif/go-moodflix/internal/metrics"
)

// breaker wraps catalog calls in a circuit breaker. An open circuit is
// reported to callers as an ordinary request failure.
type breaker struct {
	cb *gobreaker.CircuitBreaker[[]byte]
}

// newBreaker opens after a 60% failure rate over at least 10 requests in a
// one-minute window and probes again after 30 seconds.
func newBreaker(name string) *breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &breaker{cb: cb}
}

func (b *breaker) execute(fn func() ([]byte, error)) ([]byte, error) {
	return b.cb.Execute(fn)
}

// countsAsSuccess keeps client errors (bad request, not found) from tripping
// the breaker. Rate limiting and server errors still count.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code < 500 && se.Code != 429
	}
	return false
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
