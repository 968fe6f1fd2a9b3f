package domain

import "time"

const (
	// DefaultOffset is applied when a request carries no offset.
	DefaultOffset = 0
	// DefaultLimit is applied when a request carries no limit.
	DefaultLimit = 10
)

// Pagination is a validated offset/limit window.
type Pagination struct {
	Offset int `json:"offset" validate:"gte=0"`
	Limit  int `json:"limit" validate:"gte=0"`
}

// DefaultPagination returns the window used when no parameters are given.
func DefaultPagination() Pagination {
	return Pagination{Offset: DefaultOffset, Limit: DefaultLimit}
}

// Recommendation is one scored film returned for a reference film.
type Recommendation struct {
	FilmID        int
	Title         string
	ReleaseDate   *time.Time
	Genre         string
	AverageRating float64
	ReviewCount   int
}
