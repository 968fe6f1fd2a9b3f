package recommend

import (
	"context"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

// assemble resolves the surviving films against the catalog and applies the
// page there. Results follow catalog order, not rating order.
func assemble(ctx context.Context, catalog Catalog, scored []Scored, page domain.Pagination) ([]domain.Recommendation, error) {
	if len(scored) == 0 || page.Limit == 0 {
		return []domain.Recommendation{}, nil
	}

	ids := make([]int, 0, len(scored))
	summaries := make(map[int]RatingSummary, len(scored))
	for _, s := range scored {
		ids = append(ids, s.FilmID)
		summaries[s.FilmID] = s.Summary
	}

	films, err := catalog.ListByIDs(ctx, ids, page)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(films))
	for _, f := range films {
		summary, ok := summaries[f.ID]
		if !ok {
			continue
		}
		recs = append(recs, domain.Recommendation{
			FilmID:        f.ID,
			Title:         f.Title,
			ReleaseDate:   f.ReleaseDate,
			Genre:         f.GenreName(),
			AverageRating: summary.Average,
			ReviewCount:   summary.Count,
		})
		if len(recs) == page.Limit {
			break
		}
	}
	return recs, nil
}
