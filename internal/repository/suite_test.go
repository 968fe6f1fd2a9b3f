package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func mustCreateGenre(t testing.TB, films FilmStore, name string) domain.Genre {
	t.Helper()
	genre, err := films.CreateGenre(context.Background(), name)
	if err != nil {
		t.Fatalf("create genre %q: %v", name, err)
	}
	return genre
}

func mustCreateFilm(t testing.TB, films FilmStore, params FilmCreateParams) domain.Film {
	t.Helper()
	film, err := films.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create film %q: %v", params.Title, err)
	}
	return film
}

func filmIDs(films []domain.Film) []int {
	ids := make([]int, 0, len(films))
	for _, f := range films {
		ids = append(ids, f.ID)
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// runCatalogSuite exercises the FilmStore contract against a freshly migrated backend.
func runCatalogSuite(t *testing.T, repo *Repository) {
	ctx := context.Background()
	films := repo.Films

	action := mustCreateGenre(t, films, "Action")
	drama := mustCreateGenre(t, films, "Drama")

	reference := mustCreateFilm(t, films, FilmCreateParams{
		ID:          intPtr(7264),
		Title:       "Reference",
		ReleaseDate: date(1994, time.January, 1),
		GenreID:     &action.ID,
		Tagline:     strPtr("the one"),
	})
	near := mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(100), Title: "Near", ReleaseDate: date(1995, time.January, 1), GenreID: &action.ID})
	edgeLow := mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(101), Title: "Edge Low", ReleaseDate: date(1979, time.January, 1), GenreID: &action.ID})
	edgeHigh := mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(102), Title: "Edge High", ReleaseDate: date(2009, time.December, 31), GenreID: &action.ID})
	mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(103), Title: "Too Old", ReleaseDate: date(1978, time.December, 31), GenreID: &action.ID})
	mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(104), Title: "Undated", GenreID: &action.ID})
	mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(105), Title: "Other Genre", ReleaseDate: date(1994, time.June, 1), GenreID: &drama.ID})
	mustCreateFilm(t, films, FilmCreateParams{ID: intPtr(106), Title: "No Genre", ReleaseDate: date(1994, time.June, 1)})

	t.Run("GetByID joins genre", func(t *testing.T) {
		got, err := films.GetByID(ctx, reference.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != "Reference" || got.GenreName() != "Action" {
			t.Fatalf("GetByID = %+v, want Reference/Action", got)
		}
		if got.ReleaseDate == nil || !got.ReleaseDate.Equal(*date(1994, time.January, 1)) {
			t.Fatalf("ReleaseDate = %v, want 1994-01-01", got.ReleaseDate)
		}
		if got.Tagline == nil || *got.Tagline != "the one" {
			t.Fatalf("Tagline = %v, want the one", got.Tagline)
		}
	})

	t.Run("GetByID missing", func(t *testing.T) {
		if _, err := films.GetByID(ctx, 999999); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetByID(999999) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListCandidates without years", func(t *testing.T) {
		got, err := films.ListCandidates(ctx, CandidateQuery{GenreID: action.ID, ExcludeID: reference.ID})
		if err != nil {
			t.Fatalf("ListCandidates: %v", err)
		}
		want := []int{100, 101, 102, 103, 104}
		if !equalIDs(filmIDs(got), want) {
			t.Fatalf("ListCandidates ids = %v, want %v", filmIDs(got), want)
		}
	})

	t.Run("ListCandidates narrows by inclusive years", func(t *testing.T) {
		got, err := films.ListCandidates(ctx, CandidateQuery{
			GenreID:   action.ID,
			ExcludeID: reference.ID,
			Years:     &domain.YearSpan{From: 1979, To: 2009},
		})
		if err != nil {
			t.Fatalf("ListCandidates: %v", err)
		}
		want := []int{near.ID, edgeLow.ID, edgeHigh.ID}
		if !equalIDs(filmIDs(got), want) {
			t.Fatalf("ListCandidates ids = %v, want %v", filmIDs(got), want)
		}
	})

	t.Run("ListByIDs paginates in id order", func(t *testing.T) {
		ids := []int{102, 7264, 100, 105}
		got, err := films.ListByIDs(ctx, ids, domain.Pagination{Offset: 1, Limit: 2})
		if err != nil {
			t.Fatalf("ListByIDs: %v", err)
		}
		if want := []int{102, 105}; !equalIDs(filmIDs(got), want) {
			t.Fatalf("ListByIDs ids = %v, want %v", filmIDs(got), want)
		}
		if got[1].GenreName() != "Drama" {
			t.Fatalf("genre = %q, want Drama", got[1].GenreName())
		}
	})

	t.Run("ListByIDs empty and zero limit", func(t *testing.T) {
		got, err := films.ListByIDs(ctx, nil, domain.DefaultPagination())
		if err != nil || len(got) != 0 {
			t.Fatalf("ListByIDs(nil) = %v, %v; want empty", got, err)
		}
		got, err = films.ListByIDs(ctx, []int{100}, domain.Pagination{Limit: 0})
		if err != nil || len(got) != 0 {
			t.Fatalf("ListByIDs(limit 0) = %v, %v; want empty", got, err)
		}
	})

	t.Run("List pages whole catalog", func(t *testing.T) {
		first, err := films.List(ctx, domain.Pagination{Offset: 0, Limit: 3})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if want := []int{100, 101, 102}; !equalIDs(filmIDs(first), want) {
			t.Fatalf("first page = %v, want %v", filmIDs(first), want)
		}
		rest, err := films.List(ctx, domain.Pagination{Offset: 3, Limit: 10})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if want := []int{103, 104, 105, 106, 7264}; !equalIDs(filmIDs(rest), want) {
			t.Fatalf("second page = %v, want %v", filmIDs(rest), want)
		}
		for _, f := range rest {
			if f.ID == 106 && f.Genre != nil {
				t.Fatalf("film without genre got genre %+v", f.Genre)
			}
			if f.ID == 104 && f.ReleaseDate != nil {
				t.Fatalf("undated film got release date %v", f.ReleaseDate)
			}
		}
	})
}
