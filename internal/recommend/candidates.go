package recommend

import (
	"context"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/repository"
)

// Catalog is the read side of the film store the pipeline depends on.
type Catalog interface {
	GetByID(ctx context.Context, id int) (domain.Film, error)
	ListCandidates(ctx context.Context, q repository.CandidateQuery) ([]domain.Film, error)
	ListByIDs(ctx context.Context, ids []int, page domain.Pagination) ([]domain.Film, error)
}

// selectCandidates returns the ids of same-genre films released inside the
// policy window around ref, in catalog order. The catalog narrows the query;
// the conditions are re-checked here so any Catalog implementation is safe.
func selectCandidates(ctx context.Context, catalog Catalog, policy Policy, ref domain.Film) ([]int, error) {
	if ref.GenreID == nil || ref.ReleaseDate == nil {
		return []int{}, nil
	}
	window := policy.Window(*ref.ReleaseDate)

	films, err := catalog.ListCandidates(ctx, repository.CandidateQuery{
		GenreID:   *ref.GenreID,
		ExcludeID: ref.ID,
		Years:     &window,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(films))
	for _, f := range films {
		if f.ID == ref.ID || f.GenreID == nil || *f.GenreID != *ref.GenreID {
			continue
		}
		if f.ReleaseDate == nil || !window.Contains(*f.ReleaseDate) {
			continue
		}
		ids = append(ids, f.ID)
	}
	return ids, nil
}
