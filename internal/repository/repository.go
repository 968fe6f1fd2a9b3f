package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// CandidateQuery selects films of one genre other than a given film.
type CandidateQuery struct {
	GenreID   int
	ExcludeID int
	// Years narrows by release year when set. Films without a release date
	// are then excluded.
	Years *domain.YearSpan
}

// FilmCreateParams bundles the fields required to create a film. ID is
// optional and lets fixtures pin identifiers.
type FilmCreateParams struct {
	ID               *int
	Title            string
	ReleaseDate      *time.Time
	GenreID          *int
	Tagline          *string
	Revenue          *int64
	Budget           *int64
	Runtime          *int
	OriginalLanguage *string
	Status           *string
}

// FilmStore is the catalog contract shared by the Postgres and SQLite backends.
type FilmStore interface {
	// GetByID returns the film with its genre joined, or ErrNotFound.
	GetByID(ctx context.Context, id int) (domain.Film, error)
	// ListCandidates returns films matching q in id order, without the genre joined.
	ListCandidates(ctx context.Context, q CandidateQuery) ([]domain.Film, error)
	// ListByIDs returns the page of films among ids, in id order, with genres joined.
	ListByIDs(ctx context.Context, ids []int, page domain.Pagination) ([]domain.Film, error)
	// List returns a page of the whole catalog in id order with genres joined.
	List(ctx context.Context, page domain.Pagination) ([]domain.Film, error)
	Create(ctx context.Context, params FilmCreateParams) (domain.Film, error)
	CreateGenre(ctx context.Context, name string) (domain.Genre, error)
}

// Repository aggregates the catalog repositories.
type Repository struct {
	Films FilmStore
}

// New constructs a Repository backed by the provided Postgres store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{Films: &PostgresFilms{pool: pool}}
}

// NewSQLite constructs a Repository backed by a SQLite catalog.
func NewSQLite(st *store.SQLite) *Repository {
	return NewWithDB(st.DB())
}

// NewWithDB allows constructing repositories directly from a SQLite handle.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{Films: &SQLiteFilms{db: db}}
}
