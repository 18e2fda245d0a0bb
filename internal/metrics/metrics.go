// Package metrics holds the reporting aggregators. Each one is a pure
// function over a filtered Dataset: it allocates its own result, tolerates
// columns that are entirely null, and treats NaN cells as absent rather than
// zero unless a specific metric coerces them.
package metrics

import (
	"fmt"

	"ops-dashboard/internal/models"
)

// Granularity selects the time bucket of the revenue series.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

// ParseGranularity accepts the long form and the single-letter form the
// sidebar widget sends.
func ParseGranularity(v string) (Granularity, error) {
	switch v {
	case "day", "daily", "D", "d":
		return Daily, nil
	case "week", "weekly", "W", "w":
		return Weekly, nil
	case "month", "monthly", "M", "m":
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown granularity %q", v)
}

// sumValid totals a numeric column, skipping null cells. An entirely null
// column sums to zero.
func sumValid(rows []models.Transaction, pick func(models.Transaction) float64) float64 {
	var total float64
	for _, tx := range rows {
		if v := pick(tx); !models.IsNull(v) {
			total += v
		}
	}
	return total
}

// meanValid averages a numeric column over its non-null cells only.
func meanValid(rows []models.Transaction, pick func(models.Transaction) float64) (float64, bool) {
	var total float64
	var n int
	for _, tx := range rows {
		if v := pick(tx); !models.IsNull(v) {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// countDistinct counts distinct non-null values of a string column.
func countDistinct(rows []models.Transaction, pick func(models.Transaction) string) int {
	seen := make(map[string]bool)
	for _, tx := range rows {
		if v := pick(tx); v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// zeroIfNull is the coercion rule for metrics that do arithmetic on possibly
// missing cells (catalog qty/price/cost, funnel stages).
func zeroIfNull(v float64) float64 {
	if models.IsNull(v) {
		return 0
	}
	return v
}
