package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

// SQLiteFilms provides catalog queries on a SQLite file.
type SQLiteFilms struct {
	db *sql.DB
}

// GetByID fetches a film by its identifier with its genre joined.
func (r *SQLiteFilms) GetByID(ctx context.Context, id int) (domain.Film, error) {
	q := getByIDQuery(sqliteDialect, id)
	film, err := scanFilm(r.db.QueryRowContext(ctx, q.String(), q.args...), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Film{}, ErrNotFound
		}
		return domain.Film{}, err
	}
	return film, nil
}

// ListCandidates returns same-genre films other than the excluded one.
func (r *SQLiteFilms) ListCandidates(ctx context.Context, c CandidateQuery) ([]domain.Film, error) {
	return r.query(ctx, candidatesQuery(sqliteDialect, c), false)
}

// ListByIDs returns one page of the films among ids.
func (r *SQLiteFilms) ListByIDs(ctx context.Context, ids []int, page domain.Pagination) ([]domain.Film, error) {
	if len(ids) == 0 {
		return []domain.Film{}, nil
	}
	return r.query(ctx, byIDsQuery(sqliteDialect, ids, page), true)
}

// List returns one page of the catalog.
func (r *SQLiteFilms) List(ctx context.Context, page domain.Pagination) ([]domain.Film, error) {
	return r.query(ctx, listQuery(sqliteDialect, page), true)
}

// Create inserts a new film row and returns the stored entity.
func (r *SQLiteFilms) Create(ctx context.Context, params FilmCreateParams) (domain.Film, error) {
	q := insertFilmQuery(sqliteDialect, params)
	var id int
	if err := r.db.QueryRowContext(ctx, q.String(), q.args...).Scan(&id); err != nil {
		return domain.Film{}, fmt.Errorf("insert film: %w", err)
	}
	return r.GetByID(ctx, id)
}

// CreateGenre inserts a genre.
func (r *SQLiteFilms) CreateGenre(ctx context.Context, name string) (domain.Genre, error) {
	q := insertGenreQuery(sqliteDialect, name)
	var genre domain.Genre
	if err := r.db.QueryRowContext(ctx, q.String(), q.args...).Scan(&genre.ID, &genre.Name); err != nil {
		return domain.Genre{}, fmt.Errorf("insert genre: %w", err)
	}
	return genre, nil
}

func (r *SQLiteFilms) query(ctx context.Context, q *query, joined bool) ([]domain.Film, error) {
	rows, err := r.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	films := make([]domain.Film, 0)
	for rows.Next() {
		film, err := scanFilm(rows, joined)
		if err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return films, nil
}
