package domain

// Review is a single rating sample returned by the review service.
type Review struct {
	ID      int     `json:"id,omitempty"`
	Author  string  `json:"author,omitempty"`
	Content string  `json:"content,omitempty"`
	Rating  float64 `json:"rating"`
}

// FilmReviews groups the reviews the review service holds for one film.
type FilmReviews struct {
	FilmID  int      `json:"film_id"`
	Reviews []Review `json:"reviews"`
}
