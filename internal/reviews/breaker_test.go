package reviews

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/metrics"
)

type stubClient struct {
	calls int
	err   error
}

func (s *stubClient) Fetch(context.Context, []int) ([]domain.FilmReviews, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []domain.FilmReviews{{FilmID: 1}}, nil
}

func testBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:                name,
		MaxRequests:         1,
		Timeout:             time.Hour,
		ConsecutiveFailures: 3,
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubClient{err: &UpstreamError{StatusCode: http.StatusBadGateway, Err: errors.New("boom")}}
	b := NewBreakerClient(stub, testBreakerSettings("test-open"), zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := b.Fetch(context.Background(), []int{1})
		var upstream *UpstreamError
		if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusBadGateway {
			t.Fatalf("call %d error = %v, want 502", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	_, err := b.Fetch(context.Background(), []int{1})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("open breaker error = %v, want 503", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("open breaker error should wrap ErrOpenState: %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("wrapped calls = %d, want 3", stub.calls)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Fatalf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("test-open", "closed", "open")); got != 1 {
		t.Fatalf("transitions = %v, want 1", got)
	}
}

func TestBreakerIgnoresCallerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "upstream 4xx", err: &UpstreamError{StatusCode: http.StatusTooManyRequests}},
		{name: "invalid id", err: ErrInvalidFilmID},
		{name: "cancelled", err: &UpstreamError{StatusCode: http.StatusBadGateway, Err: context.Canceled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubClient{err: tt.err}
			b := NewBreakerClient(stub, testBreakerSettings("test-ignore"), zerolog.Nop())
			for i := 0; i < 5; i++ {
				if _, err := b.Fetch(context.Background(), []int{1}); !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}
			}
			if b.State() != gobreaker.StateClosed {
				t.Fatalf("state = %v, want closed", b.State())
			}
			if stub.calls != 5 {
				t.Fatalf("wrapped calls = %d, want 5", stub.calls)
			}
		})
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	stub := &stubClient{}
	b := NewBreakerClient(stub, testBreakerSettings("test-success"), zerolog.Nop())
	got, err := b.Fetch(context.Background(), []int{1})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].FilmID != 1 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	stub := &stubClient{err: &UpstreamError{StatusCode: http.StatusBadGateway}}
	settings := testBreakerSettings("test-recover")
	settings.Timeout = 20 * time.Millisecond
	b := NewBreakerClient(stub, settings, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, _ = b.Fetch(context.Background(), []int{1})
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	time.Sleep(50 * time.Millisecond)
	stub.err = nil
	if _, err := b.Fetch(context.Background(), []int{1}); err != nil {
		t.Fatalf("probe error = %v, want success", err)
	}
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}
