package metrics

import (
	"slices"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

const topCustomersLimit = 20

type customerAcc struct {
	row models.CustomerRevenue
	ord int
}

// TopCustomers ranks customers by summed revenue, descending, top 20.
// Revenue ties keep input order.
func TopCustomers(ds *dataset.Dataset) []models.CustomerRevenue {
	groups := make(map[string]*customerAcc)
	order := 0
	for _, tx := range ds.Rows {
		acc := groups[tx.CustomerID]
		if acc == nil {
			acc = &customerAcc{row: models.CustomerRevenue{CustomerID: tx.CustomerID}, ord: order}
			groups[tx.CustomerID] = acc
			order++
		}
		if !models.IsNull(tx.Revenue) {
			acc.row.Revenue += tx.Revenue
		}
	}

	accs := make([]*customerAcc, 0, len(groups))
	for _, acc := range groups {
		accs = append(accs, acc)
	}
	slices.SortFunc(accs, func(a, b *customerAcc) int {
		switch {
		case a.row.Revenue > b.row.Revenue:
			return -1
		case a.row.Revenue < b.row.Revenue:
			return 1
		default:
			return a.ord - b.ord
		}
	})
	if len(accs) > topCustomersLimit {
		accs = accs[:topCustomersLimit]
	}

	out := make([]models.CustomerRevenue, len(accs))
	for i, acc := range accs {
		out[i] = acc.row
	}
	return out
}

// Cohorts counts distinct customers per (first-order month, order month)
// cell, zero-filling empty cells. It deliberately takes the unfiltered
// Dataset: cohort retention spans all history regardless of the active
// filters, matching the observed behavior of the screens it feeds. Requires
// the optional first_order_date column; without it the matrix is a
// placeholder naming the column.
func Cohorts(ds *dataset.Dataset) models.CohortMatrix {
	if !ds.Has(dataset.ColFirstOrderDate) {
		return models.CohortMatrix{MissingColumns: []string{dataset.ColFirstOrderDate}}
	}

	type cell struct {
		firstMonth string
		orderMonth string
	}
	customers := make(map[cell]map[string]bool)
	firstMonths := make(map[string]bool)
	orderMonths := make(map[string]bool)

	for _, tx := range ds.Rows {
		if tx.FirstOrderDate.IsZero() || tx.Date.IsZero() || tx.CustomerID == "" {
			continue
		}
		c := cell{
			firstMonth: tx.FirstOrderDate.Format("2006-01"),
			orderMonth: tx.Date.Format("2006-01"),
		}
		if customers[c] == nil {
			customers[c] = make(map[string]bool)
		}
		customers[c][tx.CustomerID] = true
		firstMonths[c.firstMonth] = true
		orderMonths[c.orderMonth] = true
	}

	months := make([]string, 0, len(orderMonths))
	for m := range orderMonths {
		months = append(months, m)
	}
	slices.Sort(months)

	rowKeys := make([]string, 0, len(firstMonths))
	for m := range firstMonths {
		rowKeys = append(rowKeys, m)
	}
	slices.Sort(rowKeys)

	rows := make([]models.CohortRow, len(rowKeys))
	for i, first := range rowKeys {
		counts := make([]int, len(months))
		for j, month := range months {
			counts[j] = len(customers[cell{firstMonth: first, orderMonth: month}])
		}
		rows[i] = models.CohortRow{FirstMonth: first, Counts: counts}
	}

	return models.CohortMatrix{Months: months, Rows: rows}
}
