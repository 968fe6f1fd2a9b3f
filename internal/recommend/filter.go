package recommend

import (
	"time"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

const (
	// MinReviews is the smallest review count a recommendation may have.
	MinReviews = 5
	// MinAverageRating must be strictly exceeded by a recommendation's average.
	MinAverageRating = 4.0
	// YearsBefore and YearsAfter bound the release-year window around the reference film.
	YearsBefore = 15
	YearsAfter  = 15
)

// Policy holds the similarity window and quality thresholds.
type Policy struct {
	MinReviews       int
	MinAverageRating float64
	YearsBefore      int
	YearsAfter       int
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinReviews:       MinReviews,
		MinAverageRating: MinAverageRating,
		YearsBefore:      YearsBefore,
		YearsAfter:       YearsAfter,
	}
}

// Window returns the inclusive release-year span around released.
func (p Policy) Window(released time.Time) domain.YearSpan {
	year := released.Year()
	return domain.YearSpan{From: year - p.YearsBefore, To: year + p.YearsAfter}
}

// Scored is a film that passed the quality thresholds.
type Scored struct {
	FilmID  int
	Summary RatingSummary
}

// Filter keeps payloads of requested candidates that have at least MinReviews
// reviews and then an average above MinAverageRating. Payloads for ids that
// were not requested are dropped and only the first payload per film counts.
// Upstream order is preserved.
func (p Policy) Filter(payloads []domain.FilmReviews, candidates []int) []Scored {
	requested := make(map[int]struct{}, len(candidates))
	for _, id := range candidates {
		requested[id] = struct{}{}
	}

	seen := make(map[int]struct{}, len(payloads))
	scored := make([]Scored, 0, len(payloads))
	for _, payload := range payloads {
		if _, ok := requested[payload.FilmID]; !ok {
			continue
		}
		if _, dup := seen[payload.FilmID]; dup {
			continue
		}
		seen[payload.FilmID] = struct{}{}

		if len(payload.Reviews) < p.MinReviews {
			continue
		}
		summary := Summarize(payload.Reviews)
		if summary.Count == 0 || summary.Average <= p.MinAverageRating {
			continue
		}
		scored = append(scored, Scored{FilmID: payload.FilmID, Summary: summary})
	}
	return scored
}
