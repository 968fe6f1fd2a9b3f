package reviews

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/metrics"
)

// BreakerSettings tunes the circuit breaker around the review service.
type BreakerSettings struct {
	Name string
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts; zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerSettings returns the production breaker tuning.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                "reviews-api",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerClient fails fast with a 503 UpstreamError while the review service
// keeps failing. It never retries.
type BreakerClient struct {
	next   Client
	cb     *gobreaker.CircuitBreaker[[]domain.FilmReviews]
	name   string
	logger zerolog.Logger
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(next Client, settings BreakerSettings, logger zerolog.Logger) *BreakerClient {
	if settings.Name == "" {
		settings.Name = DefaultBreakerSettings().Name
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultBreakerSettings().ConsecutiveFailures
	}
	logger = logger.With().Str("component", "reviews_breaker").Str("breaker", settings.Name).Logger()

	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(stateToFloat(gobreaker.StateClosed))

	threshold := settings.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker[[]domain.FilmReviews](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerClient{next: next, cb: cb, name: settings.Name, logger: logger}
}

// Fetch delegates to the wrapped client unless the breaker is open.
func (b *BreakerClient) Fetch(ctx context.Context, ids []int) ([]domain.FilmReviews, error) {
	payload, err := b.cb.Execute(func() ([]domain.FilmReviews, error) {
		return b.next.Fetch(ctx, ids)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ReviewRequests.WithLabelValues("rejected").Inc()
			b.logger.Warn().Err(err).Msg("review request rejected")
			return nil, &UpstreamError{StatusCode: http.StatusServiceUnavailable, Err: err}
		}
		return nil, err
	}
	return payload, nil
}

// State reports the current breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// countsAsSuccess keeps caller-side failures from tripping the breaker: bad
// ids, cancelled requests and upstream 4xx answers.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrInvalidFilmID) || errors.Is(err, context.Canceled) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode >= 400 && upstream.StatusCode < 500
	}
	return false
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
