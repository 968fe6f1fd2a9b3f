package reviews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/metrics"
)

// ErrInvalidFilmID is returned before any network call when an id is not positive.
var ErrInvalidFilmID = errors.New("reviews: invalid film id")

// UpstreamError reports a failed exchange with the review service. StatusCode
// is the upstream status for non-2xx answers, 502 for transport or decode
// failures, 504 on deadline and 503 when the circuit breaker is open.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("reviews: upstream status %d", e.StatusCode)
	}
	return fmt.Sprintf("reviews: upstream status %d: %v", e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client defines the contract for querying the review service.
type Client interface {
	// Fetch returns the review payloads the service holds for ids in one
	// batched call. Films without reviews are absent from the result.
	Fetch(ctx context.Context, ids []int) ([]domain.FilmReviews, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	endpoint *url.URL
	apiKey   string
	client   *http.Client
	logger   zerolog.Logger
}

// NewHTTPClient constructs a new HTTP-backed review client. path is appended
// to baseURL verbatim.
func NewHTTPClient(baseURL, path, apiKey string, timeout time.Duration, logger zerolog.Logger) (*HTTPClient, error) {
	endpoint, err := url.Parse(strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse reviews url: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("parse reviews url: %q is not absolute", baseURL)
	}
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
				MaxIdleConnsPerHost:   16,
			},
		},
		logger: logger.With().Str("component", "reviews").Logger(),
	}, nil
}

// Fetch retrieves the reviews of every film in ids with a single GET.
func (c *HTTPClient) Fetch(ctx context.Context, ids []int) ([]domain.FilmReviews, error) {
	if len(ids) == 0 {
		return []domain.FilmReviews{}, nil
	}
	films, err := joinIDs(ids)
	if err != nil {
		return nil, err
	}

	endpoint := *c.endpoint
	q := endpoint.Query()
	q.Set("films", films)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build reviews request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	defer func() { metrics.ReviewRequestDuration.Observe(time.Since(start).Seconds()) }()

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			metrics.ReviewRequests.WithLabelValues("timeout").Inc()
			return nil, &UpstreamError{StatusCode: http.StatusGatewayTimeout, Err: err}
		}
		metrics.ReviewRequests.WithLabelValues("transport_error").Inc()
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Int("films", len(ids)).
			Msg("reviews: unexpected upstream status")
		metrics.ReviewRequests.WithLabelValues("upstream_error").Inc()
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reviews: upstream returned %d", resp.StatusCode),
		}
	}

	payload, err := decodePayload(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			metrics.ReviewRequests.WithLabelValues("timeout").Inc()
			return nil, &UpstreamError{StatusCode: http.StatusGatewayTimeout, Err: err}
		}
		metrics.ReviewRequests.WithLabelValues("decode_error").Inc()
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Err: err}
	}
	metrics.ReviewRequests.WithLabelValues("success").Inc()
	c.logger.Debug().Int("films", len(ids)).Int("payloads", len(payload)).Msg("reviews fetched")
	return payload, nil
}

func joinIDs(ids []int) (string, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return "", fmt.Errorf("%w: %d", ErrInvalidFilmID, id)
		}
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ","), nil
}

func decodePayload(r io.Reader) ([]domain.FilmReviews, error) {
	var payload []domain.FilmReviews
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reviews response: %w", err)
	}
	if payload == nil {
		payload = []domain.FilmReviews{}
	}
	return payload, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
