// Package recommend computes content-based film recommendations: same-genre
// films released near a reference film that are well reviewed.
package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/metrics"
	"github.com/Clark-Hu/filmrec/internal/repository"
	"github.com/Clark-Hu/filmrec/internal/reviews"
)

const tracerName = "github.com/Clark-Hu/filmrec/internal/recommend"

// Result is a page of recommendations with the pagination that produced it.
type Result struct {
	Recommendations []domain.Recommendation
	Meta            domain.Pagination
}

// Engine runs the recommendation pipeline. It holds only immutable
// collaborators and is safe for concurrent use.
type Engine struct {
	catalog Catalog
	reviews reviews.Client
	policy  Policy
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// Option customises an Engine.
type Option func(*Engine)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine wires the pipeline collaborators.
func NewEngine(catalog Catalog, client reviews.Client, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		reviews: client,
		policy:  DefaultPolicy(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the thresholds the engine applies.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Recommend validates q and runs reference lookup, candidate selection,
// review fetch, filtering and assembly in order. Any failure is an *Error.
func (e *Engine) Recommend(ctx context.Context, q Query) (Result, error) {
	res, err := e.recommend(ctx, q)
	outcome := OutcomeOf(err)
	metrics.RecommendationRequests.WithLabelValues(string(outcome)).Inc()

	logger := e.loggerFor(ctx)
	if err != nil {
		ev := logger.Info()
		if outcome == OutcomeInternalError || outcome == OutcomeUpstreamError {
			ev = logger.Error()
		}
		var perr *Error
		if errors.As(err, &perr) {
			ev = ev.Err(perr.Err).Str("message", perr.Message)
		} else {
			ev = ev.Err(err)
		}
		ev.Str("outcome", string(outcome)).
			Str("film_id", q.FilmID).
			Msg("recommendation request failed")
		return Result{}, err
	}
	logger.Debug().
		Str("film_id", q.FilmID).
		Int("recommendations", len(res.Recommendations)).
		Msg("recommendations computed")
	return res, nil
}

func (e *Engine) recommend(ctx context.Context, q Query) (Result, error) {
	parsed, err := ParseQuery(q)
	if err != nil {
		return Result{}, err
	}

	ref, err := runStage(ctx, e, "reference", func(ctx context.Context) (domain.Film, error) {
		return e.catalog.GetByID(ctx, parsed.FilmID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, notFound(parsed.FilmID)
		}
		return Result{}, internal(err)
	}

	ids, err := runStage(ctx, e, "candidates", func(ctx context.Context) ([]int, error) {
		return selectCandidates(ctx, e.catalog, e.policy, ref)
	})
	if err != nil {
		return Result{}, internal(err)
	}
	metrics.RecommendationCandidates.Observe(float64(len(ids)))

	payloads, err := runStage(ctx, e, "reviews", func(ctx context.Context) ([]domain.FilmReviews, error) {
		if len(ids) == 0 {
			return []domain.FilmReviews{}, nil
		}
		return e.reviews.Fetch(ctx, ids)
	})
	if err != nil {
		var upErr *reviews.UpstreamError
		if errors.As(err, &upErr) {
			return Result{}, upstream(upErr.StatusCode, err)
		}
		return Result{}, internal(err)
	}

	scored, _ := runStage(ctx, e, "filter", func(context.Context) ([]Scored, error) {
		return e.policy.Filter(payloads, ids), nil
	})

	recs, err := runStage(ctx, e, "assemble", func(ctx context.Context) ([]domain.Recommendation, error) {
		return assemble(ctx, e.catalog, scored, parsed.Page)
	})
	if err != nil {
		return Result{}, internal(err)
	}

	return Result{Recommendations: recs, Meta: parsed.Page}, nil
}

// runStage times fn under a span named after the stage.
func runStage[T any](ctx context.Context, e *Engine, stage string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := e.tracer.Start(ctx, "recommend."+stage)
	defer span.End()

	start := time.Now()
	v, err := fn(ctx)
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return v, err
	}
	return v, nil
}

func (e *Engine) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		sub := l.With().Str("component", "recommend").Logger()
		return &sub
	}
	return &e.logger
}
