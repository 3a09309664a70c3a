// Package analytics derives the dashboard summary from stored results.
package analytics

import (
	"math"

	"cquiz-service/internal/domain"
)

// Summarize computes attempt count and average/high/low percentage scores.
// Returns nil when there are no results. All scores are rounded to one
// decimal place; no weighting by test difficulty or recency.
func Summarize(results []domain.Result) *domain.Stats {
	if len(results) == 0 {
		return nil
	}

	sum := 0.0
	high := math.Inf(-1)
	low := math.Inf(1)
	for _, r := range results {
		pct := r.Percentage()
		sum += pct
		high = math.Max(high, pct)
		low = math.Min(low, pct)
	}

	return &domain.Stats{
		TotalAttempts: len(results),
		AvgScore:      round1(sum / float64(len(results))),
		HighScore:     round1(high),
		LowScore:      round1(low),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
