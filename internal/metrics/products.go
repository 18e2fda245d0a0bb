package metrics

import (
	"slices"
	"strconv"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

const (
	// MinTopN and MaxTopN bound the user-selected top-products count.
	MinTopN = 3
	MaxTopN = 20

	catalogLimit = 200
)

// ClampTopN forces a requested top-N into the allowed range.
func ClampTopN(n int) int {
	if n < MinTopN {
		return MinTopN
	}
	if n > MaxTopN {
		return MaxTopN
	}
	return n
}

type productAcc struct {
	row models.ProductRevenue
	ord int
}

// TopProducts ranks (product_id, product_name) groups by summed revenue,
// descending, and returns at most n of them. Fewer groups than n is fine;
// revenue ties keep input order.
func TopProducts(ds *dataset.Dataset, n int) []models.ProductRevenue {
	groups := make(map[string]*productAcc)
	order := 0
	for _, tx := range ds.Rows {
		key := tx.ProductID + "\x00" + tx.ProductName
		acc := groups[key]
		if acc == nil {
			acc = &productAcc{
				row: models.ProductRevenue{ProductID: tx.ProductID, ProductName: tx.ProductName},
				ord: order,
			}
			groups[key] = acc
			order++
		}
		if !models.IsNull(tx.Revenue) {
			acc.row.Revenue += tx.Revenue
		}
	}

	accs := make([]*productAcc, 0, len(groups))
	for _, acc := range groups {
		accs = append(accs, acc)
	}
	slices.SortFunc(accs, func(a, b *productAcc) int {
		switch {
		case a.row.Revenue > b.row.Revenue:
			return -1
		case a.row.Revenue < b.row.Revenue:
			return 1
		default:
			return a.ord - b.ord
		}
	})

	if n > 0 && len(accs) > n {
		accs = accs[:n]
	}
	out := make([]models.ProductRevenue, len(accs))
	for i, acc := range accs {
		out[i] = acc.row
	}
	return out
}

type catalogAcc struct {
	row models.CatalogRow
	ord int
}

// Catalog builds the product table: one line per distinct
// (product_id, sku, product_name, category, price, cost) with the summed
// quantity and the derived revenue and margin. Price, cost and qty are
// coerced to zero before any arithmetic. Sorted by derived revenue
// descending, capped at 200 lines.
func Catalog(ds *dataset.Dataset) []models.CatalogRow {
	groups := make(map[string]*catalogAcc)
	order := 0
	for _, tx := range ds.Rows {
		price := zeroIfNull(tx.Price)
		cost := zeroIfNull(tx.Cost)
		key := catalogKey(tx, price, cost)
		acc := groups[key]
		if acc == nil {
			acc = &catalogAcc{
				row: models.CatalogRow{
					ProductID:   tx.ProductID,
					SKU:         tx.SKU,
					ProductName: tx.ProductName,
					Category:    tx.Category,
					Price:       price,
					Cost:        cost,
				},
				ord: order,
			}
			groups[key] = acc
			order++
		}
		acc.row.Qty += zeroIfNull(tx.Qty)
	}

	accs := make([]*catalogAcc, 0, len(groups))
	for _, acc := range groups {
		acc.row.Revenue = acc.row.Price * acc.row.Qty
		acc.row.Margin = acc.row.Price - acc.row.Cost
		accs = append(accs, acc)
	}
	slices.SortFunc(accs, func(a, b *catalogAcc) int {
		switch {
		case a.row.Revenue > b.row.Revenue:
			return -1
		case a.row.Revenue < b.row.Revenue:
			return 1
		default:
			return a.ord - b.ord
		}
	})
	if len(accs) > catalogLimit {
		accs = accs[:catalogLimit]
	}

	out := make([]models.CatalogRow, len(accs))
	for i, acc := range accs {
		out[i] = acc.row
	}
	return out
}

func catalogKey(tx models.Transaction, price, cost float64) string {
	return tx.ProductID + "\x00" + tx.SKU + "\x00" + tx.ProductName + "\x00" +
		tx.Category + "\x00" + formatKeyFloat(price) + "\x00" + formatKeyFloat(cost)
}

func formatKeyFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
