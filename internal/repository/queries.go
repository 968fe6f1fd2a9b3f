package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

const filmColumns = `
    f.id,
    f.title,
    f.release_date,
    f.tagline,
    f.revenue,
    f.budget,
    f.runtime,
    f.original_language,
    f.status,
    f.genre_id
`

const joinedFilmColumns = filmColumns + `,
    g.id,
    g.name
`

const joinedFrom = `films f LEFT JOIN genres g ON g.id = f.genre_id`

// dialect captures the SQL differences between the catalog backends.
type dialect struct {
	placeholder func(n int) string
	releaseYear string
	date        func(d *time.Time) interface{}
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	releaseYear: "EXTRACT(YEAR FROM f.release_date)::int",
	date: func(d *time.Time) interface{} {
		if d == nil {
			return nil
		}
		return *d
	},
}

// SQLite stores dates as YYYY-MM-DD text so strftime can read them.
var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	releaseYear: "CAST(strftime('%Y', f.release_date) AS INTEGER)",
	date: func(d *time.Time) interface{} {
		if d == nil {
			return nil
		}
		return d.Format("2006-01-02")
	},
}

type query struct {
	d    dialect
	sql  strings.Builder
	args []interface{}
}

func newQuery(d dialect) *query {
	return &query{d: d}
}

func (q *query) arg(value interface{}) string {
	q.args = append(q.args, value)
	return q.d.placeholder(len(q.args))
}

func (q *query) write(parts ...string) *query {
	for _, p := range parts {
		q.sql.WriteString(p)
	}
	return q
}

func (q *query) String() string {
	return q.sql.String()
}

func (q *query) paginate(page domain.Pagination) {
	q.write(" LIMIT ", q.arg(page.Limit), " OFFSET ", q.arg(page.Offset))
}

func getByIDQuery(d dialect, id int) *query {
	q := newQuery(d)
	q.write("SELECT ", joinedFilmColumns, " FROM ", joinedFrom, " WHERE f.id = ", q.arg(id))
	return q
}

func candidatesQuery(d dialect, c CandidateQuery) *query {
	q := newQuery(d)
	q.write("SELECT ", filmColumns, " FROM films f WHERE f.genre_id = ", q.arg(c.GenreID))
	q.write(" AND f.id <> ", q.arg(c.ExcludeID))
	if c.Years != nil {
		q.write(" AND f.release_date IS NOT NULL")
		q.write(" AND ", d.releaseYear, " BETWEEN ", q.arg(c.Years.From), " AND ", q.arg(c.Years.To))
	}
	q.write(" ORDER BY f.id")
	return q
}

func byIDsQuery(d dialect, ids []int, page domain.Pagination) *query {
	q := newQuery(d)
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, q.arg(id))
	}
	q.write("SELECT ", joinedFilmColumns, " FROM ", joinedFrom)
	q.write(" WHERE f.id IN (", strings.Join(placeholders, ", "), ")")
	q.write(" ORDER BY f.id")
	q.paginate(page)
	return q
}

func listQuery(d dialect, page domain.Pagination) *query {
	q := newQuery(d)
	q.write("SELECT ", joinedFilmColumns, " FROM ", joinedFrom, " ORDER BY f.id")
	q.paginate(page)
	return q
}

func insertFilmQuery(d dialect, p FilmCreateParams) *query {
	q := newQuery(d)
	columns := []string{"title", "release_date", "genre_id", "tagline", "revenue", "budget", "runtime", "original_language", "status"}
	values := []string{
		q.arg(p.Title),
		q.arg(d.date(p.ReleaseDate)),
		q.arg(p.GenreID),
		q.arg(p.Tagline),
		q.arg(p.Revenue),
		q.arg(p.Budget),
		q.arg(p.Runtime),
		q.arg(p.OriginalLanguage),
		q.arg(p.Status),
	}
	if p.ID != nil {
		columns = append(columns, "id")
		values = append(values, q.arg(*p.ID))
	}
	q.write("INSERT INTO films (", strings.Join(columns, ", "), ") VALUES (", strings.Join(values, ", "), ") RETURNING id")
	return q
}

func insertGenreQuery(d dialect, name string) *query {
	q := newQuery(d)
	q.write("INSERT INTO genres (name) VALUES (", q.arg(name), ") RETURNING id, name")
	return q
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFilm(row rowScanner, joined bool) (domain.Film, error) {
	var (
		film      domain.Film
		genreID   *int
		genreName *string
	)

	dest := []interface{}{
		&film.ID,
		&film.Title,
		&film.ReleaseDate,
		&film.Tagline,
		&film.Revenue,
		&film.Budget,
		&film.Runtime,
		&film.OriginalLanguage,
		&film.Status,
		&film.GenreID,
	}
	if joined {
		dest = append(dest, &genreID, &genreName)
	}

	if err := row.Scan(dest...); err != nil {
		return domain.Film{}, err
	}

	if film.ReleaseDate != nil {
		d := film.ReleaseDate.UTC()
		film.ReleaseDate = &d
	}
	if genreID != nil {
		genre := domain.Genre{ID: *genreID}
		if genreName != nil {
			genre.Name = *genreName
		}
		film.Genre = &genre
	}
	return film, nil
}
