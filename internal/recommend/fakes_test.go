package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/repository"
)

type fakeCatalog struct {
	mu    sync.Mutex
	films map[int]domain.Film

	getErr        error
	candidatesErr error
	byIDsErr      error

	candidateCalls int
	byIDsCalls     int
}

func newFakeCatalog(films ...domain.Film) *fakeCatalog {
	c := &fakeCatalog{films: make(map[int]domain.Film, len(films))}
	for _, f := range films {
		c.films[f.ID] = f
	}
	return c
}

func (c *fakeCatalog) GetByID(_ context.Context, id int) (domain.Film, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.Film{}, c.getErr
	}
	f, ok := c.films[id]
	if !ok {
		return domain.Film{}, repository.ErrNotFound
	}
	return f, nil
}

func (c *fakeCatalog) ListCandidates(_ context.Context, q repository.CandidateQuery) ([]domain.Film, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidateCalls++
	if c.candidatesErr != nil {
		return nil, c.candidatesErr
	}
	var out []domain.Film
	for _, f := range c.sorted() {
		if f.GenreID == nil || *f.GenreID != q.GenreID || f.ID == q.ExcludeID {
			continue
		}
		if q.Years != nil && (f.ReleaseDate == nil || !q.Years.Contains(*f.ReleaseDate)) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *fakeCatalog) ListByIDs(_ context.Context, ids []int, page domain.Pagination) ([]domain.Film, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byIDsCalls++
	if c.byIDsErr != nil {
		return nil, c.byIDsErr
	}
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var matched []domain.Film
	for _, f := range c.sorted() {
		if _, ok := wanted[f.ID]; ok {
			matched = append(matched, f)
		}
	}
	if page.Offset >= len(matched) {
		return []domain.Film{}, nil
	}
	matched = matched[page.Offset:]
	if page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

func (c *fakeCatalog) sorted() []domain.Film {
	out := make([]domain.Film, 0, len(c.films))
	for _, f := range c.films {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeReviews struct {
	mu      sync.Mutex
	reviews map[int][]domain.Review
	err     error
	calls   int
	lastIDs []int
}

func (r *fakeReviews) Fetch(_ context.Context, ids []int) ([]domain.FilmReviews, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastIDs = append([]int(nil), ids...)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.FilmReviews, 0, len(ids))
	for _, id := range ids {
		if revs, ok := r.reviews[id]; ok {
			out = append(out, domain.FilmReviews{FilmID: id, Reviews: revs})
		}
	}
	return out, nil
}

func ratings(values ...float64) []domain.Review {
	out := make([]domain.Review, 0, len(values))
	for i, v := range values {
		out = append(out, domain.Review{ID: i + 1, Rating: v})
	}
	return out
}

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func film(id int, title string, genre *domain.Genre, released *time.Time) domain.Film {
	f := domain.Film{ID: id, Title: title, ReleaseDate: released}
	if genre != nil {
		gid := genre.ID
		f.GenreID = &gid
		g := *genre
		f.Genre = &g
	}
	return f
}
