package metrics

import (
	"slices"
	"strings"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

const lowStockLimit = 50

// Stock status labels.
const (
	StatusLow = "LOW"
	StatusOK  = "OK"
)

// InventoryByWarehouse sums on-hand inventory per warehouse. Null warehouse
// names form their own group. Sorted by warehouse name for stable output.
func InventoryByWarehouse(ds *dataset.Dataset) []models.WarehouseInventory {
	groups := make(map[string]float64)
	for _, tx := range ds.Rows {
		if !models.IsNull(tx.InventoryOnHand) {
			groups[tx.Warehouse] += tx.InventoryOnHand
		}
	}

	out := make([]models.WarehouseInventory, 0, len(groups))
	for warehouse, onHand := range groups {
		out = append(out, models.WarehouseInventory{Warehouse: warehouse, OnHand: onHand})
	}
	slices.SortFunc(out, func(a, b models.WarehouseInventory) int {
		return strings.Compare(a.Warehouse, b.Warehouse)
	})
	return out
}

type stockAcc struct {
	productID   string
	productName string
	total       float64
	n           int
	ord         int
}

// LowStock averages on-hand inventory per product, sorts ascending and keeps
// the lowest 50, labelling each line LOW when its mean is at or under the
// threshold. Products whose inventory cells are all null are dropped rather
// than sorted as zero stock.
func LowStock(ds *dataset.Dataset, threshold int) []models.StockLevel {
	if threshold < 0 {
		threshold = 0
	}

	groups := make(map[string]*stockAcc)
	order := 0
	for _, tx := range ds.Rows {
		if models.IsNull(tx.InventoryOnHand) {
			continue
		}
		key := tx.ProductID + "\x00" + tx.ProductName
		acc := groups[key]
		if acc == nil {
			acc = &stockAcc{productID: tx.ProductID, productName: tx.ProductName, ord: order}
			groups[key] = acc
			order++
		}
		acc.total += tx.InventoryOnHand
		acc.n++
	}

	accs := make([]*stockAcc, 0, len(groups))
	for _, acc := range groups {
		accs = append(accs, acc)
	}
	slices.SortFunc(accs, func(a, b *stockAcc) int {
		am, bm := a.total/float64(a.n), b.total/float64(b.n)
		switch {
		case am < bm:
			return -1
		case am > bm:
			return 1
		default:
			return a.ord - b.ord
		}
	})
	if len(accs) > lowStockLimit {
		accs = accs[:lowStockLimit]
	}

	out := make([]models.StockLevel, len(accs))
	for i, acc := range accs {
		mean := acc.total / float64(acc.n)
		status := StatusOK
		if mean <= float64(threshold) {
			status = StatusLow
		}
		out[i] = models.StockLevel{
			ProductID:   acc.productID,
			ProductName: acc.productName,
			OnHand:      mean,
			Status:      status,
		}
	}
	return out
}
