package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/recommend"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type metaResponse struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type recommendationsResponse struct {
	Recommendations []recommendationResponse `json:"recommendations"`
	Meta            metaResponse             `json:"meta"`
}

type recommendationResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	ReleaseDate   *string `json:"releaseDate"`
	Genre         string  `json:"genre"`
	AverageRating float64 `json:"averageRating"`
	Reviews       int     `json:"reviews"`
}

type filmListResponse struct {
	Films []filmResponse `json:"films"`
	Meta  metaResponse   `json:"meta"`
}

type filmResponse struct {
	ID               int            `json:"id"`
	Title            string         `json:"title"`
	ReleaseDate      *string        `json:"releaseDate"`
	Tagline          *string        `json:"tagline,omitempty"`
	Revenue          *int64         `json:"revenue,omitempty"`
	Budget           *int64         `json:"budget,omitempty"`
	Runtime          *int           `json:"runtime,omitempty"`
	OriginalLanguage *string        `json:"originalLanguage,omitempty"`
	Status           *string        `json:"status,omitempty"`
	GenreID          *int           `json:"genreId"`
	Genre            *genreResponse `json:"genre"`
}

type genreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	res, err := s.recommender.Recommend(r.Context(), recommend.Query{
		FilmID: chi.URLParam(r, "id"),
		Offset: query.Get("offset"),
		Limit:  query.Get("limit"),
	})
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	items := make([]recommendationResponse, 0, len(res.Recommendations))
	for _, rec := range res.Recommendations {
		items = append(items, recommendationResponse{
			ID:            rec.FilmID,
			Title:         rec.Title,
			ReleaseDate:   formatDate(rec.ReleaseDate),
			Genre:         rec.Genre,
			AverageRating: rec.AverageRating,
			Reviews:       rec.ReviewCount,
		})
	}
	s.respondJSON(w, http.StatusOK, recommendationsResponse{
		Recommendations: items,
		Meta:            toMetaResponse(res.Meta),
	})
}

func (s *Server) handleListFilms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := recommend.ParsePagination(query.Get("offset"), query.Get("limit"))
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	films, err := s.films.List(r.Context(), page)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list films failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list films.")
		return
	}

	items := make([]filmResponse, 0, len(films))
	for _, f := range films {
		items = append(items, toFilmResponse(f))
	}
	s.respondJSON(w, http.StatusOK, filmListResponse{Films: items, Meta: toMetaResponse(page)})
}

func (s *Server) respondPipelineError(w http.ResponseWriter, err error) {
	var perr *recommend.Error
	if !errors.As(err, &perr) {
		s.logger.Error().Err(err).Msg("unclassified pipeline error")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations.")
		return
	}
	s.respondError(w, perr.StatusCode(), errorCode(perr.Outcome), perr.Message)
}

func errorCode(outcome recommend.Outcome) string {
	switch outcome {
	case recommend.OutcomeInvalidInput:
		return "VALIDATION_ERROR"
	case recommend.OutcomeNotFound:
		return "NOT_FOUND"
	case recommend.OutcomeUpstreamError:
		return "UPSTREAM_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func toMetaResponse(page domain.Pagination) metaResponse {
	return metaResponse{Offset: page.Offset, Limit: page.Limit}
}

func toFilmResponse(f domain.Film) filmResponse {
	resp := filmResponse{
		ID:               f.ID,
		Title:            f.Title,
		ReleaseDate:      formatDate(f.ReleaseDate),
		Tagline:          f.Tagline,
		Revenue:          f.Revenue,
		Budget:           f.Budget,
		Runtime:          f.Runtime,
		OriginalLanguage: f.OriginalLanguage,
		Status:           f.Status,
		GenreID:          f.GenreID,
	}
	if f.Genre != nil {
		resp.Genre = &genreResponse{ID: f.Genre.ID, Name: f.Genre.Name}
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}
