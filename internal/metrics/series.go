package metrics

import (
	"slices"
	"strings"
	"time"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

// RevenueSeries sums revenue per time bucket at the requested granularity.
// Rows with a null date are skipped and buckets with no rows are omitted,
// not zero-filled. Buckets come back in ascending calendar order.
func RevenueSeries(ds *dataset.Dataset, gran Granularity) []models.RevenuePoint {
	buckets := make(map[string]float64)
	for _, tx := range ds.Rows {
		if tx.Date.IsZero() || models.IsNull(tx.Revenue) {
			continue
		}
		buckets[bucketKey(tx.Date, gran)] += tx.Revenue
	}

	out := make([]models.RevenuePoint, 0, len(buckets))
	for bucket, revenue := range buckets {
		out = append(out, models.RevenuePoint{Bucket: bucket, Revenue: revenue})
	}
	slices.SortFunc(out, func(a, b models.RevenuePoint) int {
		return strings.Compare(a.Bucket, b.Bucket)
	})
	return out
}

// bucketKey formats a date into its bucket label. The labels sort
// lexicographically in calendar order. Weeks start on Monday.
func bucketKey(t time.Time, gran Granularity) string {
	switch gran {
	case Weekly:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02")
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
