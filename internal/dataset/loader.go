package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ops-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10

	// assetsDir is the fixed fallback subdirectory probed after the given
	// path and the working directory.
	assetsDir = "assets"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// candidates enumerates the locations probed for the source file: the path
// as given, its basename in the working directory, and the assets fallback.
func candidates(path string) []string {
	base := filepath.Base(path)
	out := []string{path}
	if base != path {
		out = append(out, base)
	}
	out = append(out, filepath.Join(assetsDir, base))
	return out
}

// load reads the source into a schema-complete Dataset. A missing source is
// not an error: it degrades to an empty Dataset carrying the full expected
// schema so every downstream consumer still sees a complete table.
func load(ctx context.Context, path string, logger *slog.Logger) (*Dataset, error) {
	var file *os.File
	var resolved string
	for _, cand := range candidates(path) {
		f, err := os.Open(cand)
		if err == nil {
			file, resolved = f, cand
			break
		}
	}
	if file == nil {
		logger.Warn("dataset source not found at any candidate location, serving empty dataset",
			"path", path)
		return New(nil), nil
	}
	defer file.Close()

	start := time.Now()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			logger.Warn("dataset source is empty, serving empty dataset", "path", resolved)
			return New(nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	present := make(map[string]bool)
	for _, col := range append(ExpectedColumns(), OptionalColumns()...) {
		if _, ok := index[col]; ok {
			present[col] = true
		}
	}
	ds := &Dataset{Present: present, Source: resolved, LoadedAt: time.Now()}

	batch := make([][]string, 0, batchSize)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		batch = append(batch, record)

		if len(batch) >= batchSize {
			ds.Rows = append(ds.Rows, parseBatch(batch, index)...)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		ds.Rows = append(ds.Rows, parseBatch(batch, index)...)
	}

	substituteDates(ds, logger)

	logger.Info("dataset loaded",
		"path", resolved,
		"rows", len(ds.Rows),
		"duration", time.Since(start))
	return ds, nil
}

// parseBatch coerces a batch of raw records concurrently, keeping input
// order. Coercion never fails a row: bad cells become nulls.
func parseBatch(batch [][]string, index map[string]int) []models.Transaction {
	rows := make([]models.Transaction, len(batch))

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for i, record := range batch {
		g.Go(func() error {
			rows[i] = parseRow(record, index)
			return nil
		})
	}
	g.Wait()

	return rows
}

func parseRow(record []string, index map[string]int) models.Transaction {
	cell := func(col string) (string, bool) {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	str := func(col string) string {
		v, _ := cell(col)
		return v
	}
	num := func(col string) float64 {
		v, ok := cell(col)
		if !ok || v == "" {
			return models.NullFloat()
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.NullFloat()
		}
		return f
	}
	date := func(col string) time.Time {
		v, ok := cell(col)
		if !ok || v == "" {
			return time.Time{}
		}
		return parseDate(v)
	}

	firstOrder := false
	if v, ok := cell(ColFirstOrder); ok {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			firstOrder = b
		}
	}

	return models.Transaction{
		Date:            date(ColDate),
		OrderID:         str(ColOrderID),
		ProductID:       str(ColProductID),
		SKU:             str(ColSKU),
		ProductName:     str(ColProductName),
		Category:        str(ColCategory),
		Price:           num(ColPrice),
		Cost:            num(ColCost),
		Qty:             num(ColQty),
		Revenue:         num(ColRevenue),
		Channel:         str(ColChannel),
		City:            str(ColCity),
		Warehouse:       str(ColWarehouse),
		InventoryOnHand: num(ColInventoryOnHand),
		LTV:             num(ColLTV),
		CustomerID:      str(ColCustomerID),
		FirstOrder:      firstOrder,
		Spend:           num(ColSpend),
		Visits:          num(ColVisits),
		AddToCart:       num(ColAddToCart),
		Checkout:        num(ColCheckout),
		FirstOrderDate:  date(ColFirstOrderDate),
	}
}

// parseDate tries each accepted layout and normalizes to a date-only value in
// UTC, so the inclusive range filter compares calendar days. Unparseable
// cells become the null date.
func parseDate(v string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// substituteDates backfills today's date into every row when the whole date
// column failed to parse. This keeps the date-range widgets stable at the
// cost of recording a synthetic value.
func substituteDates(ds *Dataset, logger *slog.Logger) {
	if len(ds.Rows) == 0 {
		return
	}
	for _, tx := range ds.Rows {
		if !tx.Date.IsZero() {
			return
		}
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := range ds.Rows {
		ds.Rows[i].Date = today
	}
	logger.Warn("no parseable dates in source, substituting today's date for all rows",
		"rows", len(ds.Rows))
}
