package catalog

import (
	"math"

	"github.com/nikolayk812/oja-market/internal/domain"
)

const MaxRating = 5

type RatingSummary struct {
	Average float64
	Count   int
	// Histogram[i] counts reviews with rating i+1.
	Histogram [MaxRating]int
	// Percentages[i] is Histogram[i] as a share of Count, 0..100.
	Percentages [MaxRating]float64
}

// Summarize aggregates ratings. Ratings outside 1..5 are ignored.
func Summarize(reviews []domain.Review) RatingSummary {
	var (
		summary RatingSummary
		sum     int
	)

	for _, r := range reviews {
		if !ValidRating(r.Rating) {
			continue
		}
		summary.Histogram[r.Rating-1]++
		summary.Count++
		sum += r.Rating
	}

	if summary.Count == 0 {
		return summary
	}

	summary.Average = float64(sum) / float64(summary.Count)
	for i, n := range summary.Histogram {
		summary.Percentages[i] = float64(n) / float64(summary.Count) * 100
	}

	return summary
}

func ValidRating(rating int) bool {
	return rating >= 1 && rating <= MaxRating
}

type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// Stars renders rating as five stars: whole points are full, any
// remaining fraction shows one half star.
func Stars(rating float64) [MaxRating]Star {
	var stars [MaxRating]Star

	full := int(math.Floor(rating))
	hasHalf := rating != math.Floor(rating)

	for i := range stars {
		switch {
		case i < full:
			stars[i] = StarFull
		case i == full && hasHalf:
			stars[i] = StarHalf
		default:
			stars[i] = StarEmpty
		}
	}

	return stars
}
