package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmrec/internal/reviews"
)

const fixture = `{
  "8": [{"id": 1, "author": "ann", "rating": 5}, {"id": 2, "rating": 4}],
  "9": [],
  "10": [{"rating": 3.5}]
}`

func TestLoadFixture(t *testing.T) {
	got, err := loadFixture(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	if len(got) != 3 || len(got[8]) != 2 || got[8][0].Author != "ann" || got[10][0].Rating != 3.5 {
		t.Fatalf("fixture = %+v", got)
	}

	if _, err := loadFixture(strings.NewReader(`{"abc": []}`)); err == nil {
		t.Fatalf("expected error for non numeric key")
	}
}

func TestHandlerServesRequestedFilms(t *testing.T) {
	reviewsByFilm, err := loadFixture(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	srv := httptest.NewServer(newHandler("/reviews", reviewsByFilm, zerolog.Nop()))
	defer srv.Close()

	client, err := reviews.NewHTTPClient(srv.URL, "/reviews", "", time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	got, err := client.Fetch(context.Background(), []int{10, 9, 8, 77})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 || got[0].FilmID != 10 || got[1].FilmID != 8 || len(got[1].Reviews) != 2 {
		t.Fatalf("payload = %+v", got)
	}
}
