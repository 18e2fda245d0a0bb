package metrics

import (
	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

// Summarize computes the scalar KPIs for the executive screen. A zero order
// count yields a zero average order value, never a division fault, and the
// LTV mean ignores null cells.
func Summarize(ds *dataset.Dataset) models.Summary {
	revenue := sumValid(ds.Rows, func(tx models.Transaction) float64 { return tx.Revenue })
	orders := countDistinct(ds.Rows, func(tx models.Transaction) string { return tx.OrderID })

	var aov float64
	if orders > 0 {
		aov = revenue / float64(orders)
	}

	avgLTV, _ := meanValid(ds.Rows, func(tx models.Transaction) float64 { return tx.LTV })

	return models.Summary{
		Revenue:       revenue,
		Orders:        orders,
		AvgOrderValue: aov,
		AvgLTV:        avgLTV,
		NewCustomers:  newCustomers(ds),
	}
}

// newCustomers counts distinct customers flagged as first orders. When the
// source never carried the flag, every distinct customer counts.
func newCustomers(ds *dataset.Dataset) int {
	if !ds.Has(dataset.ColFirstOrder) {
		return countDistinct(ds.Rows, func(tx models.Transaction) string { return tx.CustomerID })
	}
	seen := make(map[string]bool)
	for _, tx := range ds.Rows {
		if tx.FirstOrder && tx.CustomerID != "" {
			seen[tx.CustomerID] = true
		}
	}
	return len(seen)
}
