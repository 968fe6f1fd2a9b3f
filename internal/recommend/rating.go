package recommend

import (
	"math"

	"github.com/Clark-Hu/filmrec/internal/domain"
)

// ratingDigits is the number of significant figures kept in averages.
const ratingDigits = 3

// RatingSummary is the review count and rounded average of one film.
type RatingSummary struct {
	Count   int
	Average float64
}

// Summarize reduces reviews to a count and an average rounded to three
// significant figures. An empty set yields a zero summary; check Count first.
func Summarize(reviews []domain.Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return RatingSummary{
		Count:   len(reviews),
		Average: RoundSignificant(sum/float64(len(reviews)), ratingDigits),
	}
}

// RoundSignificant rounds x to digits significant figures, half away from zero.
func RoundSignificant(x float64, digits int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) || digits <= 0 {
		return x
	}
	exp := digits - 1 - int(math.Floor(math.Log10(math.Abs(x))))
	var rounded float64
	if exp >= 0 {
		scale := math.Pow(10, float64(exp))
		rounded = math.Round(x*scale) / scale
	} else {
		scale := math.Pow(10, float64(-exp))
		rounded = math.Round(x/scale) * scale
	}
	if math.IsInf(rounded, 0) || math.IsNaN(rounded) {
		return x
	}
	return rounded
}
