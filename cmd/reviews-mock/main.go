package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmrec/internal/domain"
	"github.com/Clark-Hu/filmrec/internal/logging"
)

func main() {
	var (
		port     = flag.String("port", "9099", "port to listen on")
		data     = flag.String("data", "cmd/reviews-mock/mock-reviews.json", "path to mock data file")
		path     = flag.String("path", "/4576f55f-c427-4cfc-a11c-5bfe914ca6c1", "path to serve reviews on")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Format: "console"})

	file, err := os.Open(*data)
	if err != nil {
		logger.Fatal().Err(err).Msg("open mock data")
	}
	reviewsByFilm, err := loadFixture(file)
	_ = file.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("parse mock data")
	}

	addr := ":" + *port
	logger.Info().Str("addr", addr).Str("path", *path).Int("films", len(reviewsByFilm)).Msg("mock reviews listening")
	if err := http.ListenAndServe(addr, newHandler(*path, reviewsByFilm, logger)); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// loadFixture reads a JSON object mapping film ids to their reviews.
func loadFixture(r io.Reader) (map[int][]domain.Review, error) {
	var payload map[string][]domain.Review
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, err
	}
	reviewsByFilm := make(map[int][]domain.Review, len(payload))
	for key, revs := range payload {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("mock data key %q is not a film id", key)
		}
		reviewsByFilm[id] = revs
	}
	return reviewsByFilm, nil
}

func newHandler(path string, reviewsByFilm map[int][]domain.Review, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		films := r.URL.Query().Get("films")
		out := make([]domain.FilmReviews, 0)
		for _, raw := range strings.Split(films, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			if revs, ok := reviewsByFilm[id]; ok && len(revs) > 0 {
				out = append(out, domain.FilmReviews{FilmID: id, Reviews: revs})
			}
		}
		logger.Debug().Str("films", films).Int("payloads", len(out)).Msg("served reviews")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
