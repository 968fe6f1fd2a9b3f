package domain

import "time"

// Genre is a catalog genre. Films reference it by ID.
type Genre struct {
	ID   int
	Name string
}

// Film represents the canonical film entity in the catalog.
type Film struct {
	ID               int
	Title            string
	ReleaseDate      *time.Time
	Tagline          *string
	Revenue          *int64
	Budget           *int64
	Runtime          *int
	OriginalLanguage *string
	Status           *string
	GenreID          *int
	// Genre is only populated by queries that join the genres table.
	Genre *Genre
}

// GenreName returns the joined genre name, or "" when the film has none.
func (f Film) GenreName() string {
	if f.Genre == nil {
		return ""
	}
	return f.Genre.Name
}

// ReleaseYear reports the release year and whether the film has a release date.
func (f Film) ReleaseYear() (int, bool) {
	if f.ReleaseDate == nil {
		return 0, false
	}
	return f.ReleaseDate.Year(), true
}

// YearSpan is an inclusive range of calendar years.
type YearSpan struct {
	From int
	To   int
}

// Contains reports whether t falls in the span, compared by year only.
func (s YearSpan) Contains(t time.Time) bool {
	y := t.Year()
	return y >= s.From && y <= s.To
}
