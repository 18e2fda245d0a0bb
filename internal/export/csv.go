// Package export serializes a filtered Dataset back into downloadable
// artifacts. Failures are reported to the caller and never touch the
// in-memory table.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

// CSVFilename is the suggested name of the download artifact.
const CSVFilename = "filtered_data.csv"

// columns returns the export header: the full expected schema plus whichever
// optional columns the source carried, so a round trip through the loader
// reproduces the same table.
func columns(ds *dataset.Dataset) []string {
	cols := dataset.ExpectedColumns()
	for _, col := range dataset.OptionalColumns() {
		if ds.Has(col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// WriteCSV serializes the Dataset as UTF-8 CSV with a header row. Null cells
// become empty fields.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)

	cols := columns(ds)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for _, tx := range ds.Rows {
		for i, col := range cols {
			record[i] = formatCell(tx, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(tx models.Transaction, col string) string {
	switch col {
	case dataset.ColDate:
		return formatDate(tx.Date)
	case dataset.ColOrderID:
		return tx.OrderID
	case dataset.ColProductID:
		return tx.ProductID
	case dataset.ColSKU:
		return tx.SKU
	case dataset.ColProductName:
		return tx.ProductName
	case dataset.ColCategory:
		return tx.Category
	case dataset.ColPrice:
		return formatFloat(tx.Price)
	case dataset.ColCost:
		return formatFloat(tx.Cost)
	case dataset.ColQty:
		return formatFloat(tx.Qty)
	case dataset.ColRevenue:
		return formatFloat(tx.Revenue)
	case dataset.ColChannel:
		return tx.Channel
	case dataset.ColCity:
		return tx.City
	case dataset.ColWarehouse:
		return tx.Warehouse
	case dataset.ColInventoryOnHand:
		return formatFloat(tx.InventoryOnHand)
	case dataset.ColLTV:
		return formatFloat(tx.LTV)
	case dataset.ColCustomerID:
		return tx.CustomerID
	case dataset.ColFirstOrder:
		return strconv.FormatBool(tx.FirstOrder)
	case dataset.ColSpend:
		return formatFloat(tx.Spend)
	case dataset.ColVisits:
		return formatFloat(tx.Visits)
	case dataset.ColAddToCart:
		return formatFloat(tx.AddToCart)
	case dataset.ColCheckout:
		return formatFloat(tx.Checkout)
	case dataset.ColFirstOrderDate:
		return formatDate(tx.FirstOrderDate)
	}
	return ""
}

func formatFloat(v float64) string {
	if models.IsNull(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
