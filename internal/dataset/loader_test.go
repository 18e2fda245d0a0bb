package dataset

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isNaN(v float64) bool { return math.IsNaN(v) }

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStoreLoad_ValidData(t *testing.T) {
	csv := `date,order_id,product_id,sku,product_name,category,price,cost,qty,revenue,channel,city,warehouse,inventory_on_hand,ltv,customer_id,first_order
2024-01-01,O1,P1,SKU1,Widget,A,10.5,4,2,21,web,Austin,WH1,100,250,C1,true
2024-02-01,O2,P2,SKU2,Gadget,B,5,2,1,5,store,Dallas,WH2,50,120,C2,false`

	store := NewStore(testLogger())
	ds, err := store.Load(context.Background(), createTempCSV(t, csv))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ds.Rows))
	}
	first := ds.Rows[0]
	if !first.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", first.Date)
	}
	if first.Revenue != 21 || first.Price != 10.5 || first.Qty != 2 {
		t.Errorf("unexpected numerics: revenue=%v price=%v qty=%v", first.Revenue, first.Price, first.Qty)
	}
	if !first.FirstOrder {
		t.Error("expected first_order to parse as true")
	}
	if !ds.Has(ColRevenue) || !ds.Has(ColDate) {
		t.Error("expected header columns to be marked present")
	}
	if ds.Has(ColSpend) {
		t.Error("spend column should not be present")
	}
}

func TestStoreLoad_MissingSource(t *testing.T) {
	store := NewStore(testLogger())
	ds, err := store.Load(context.Background(), filepath.Join(t.TempDir(), "nope", "missing.csv"))
	if err != nil {
		t.Fatalf("missing source should not error, got %v", err)
	}
	if len(ds.Rows) != 0 {
		t.Errorf("expected empty dataset, got %d rows", len(ds.Rows))
	}
	// Schema stays complete so downstream consumers never probe.
	for _, col := range ExpectedColumns() {
		if !ds.Has(col) {
			t.Errorf("expected column %q present in empty dataset", col)
		}
	}
	if ds.Source != "" {
		t.Errorf("expected empty source, got %q", ds.Source)
	}
}

func TestStoreLoad_BackfillsMissingColumns(t *testing.T) {
	csv := "date,revenue\n2024-03-05,42.5\n"

	store := NewStore(testLogger())
	ds, err := store.Load(context.Background(), createTempCSV(t, csv))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(ds.Rows))
	}

	tx := ds.Rows[0]
	if tx.Revenue != 42.5 {
		t.Errorf("revenue = %v, want 42.5", tx.Revenue)
	}
	if tx.Category != "" || tx.OrderID != "" {
		t.Error("absent string columns should back-fill as empty")
	}
	if !isNaN(tx.Qty) || !isNaN(tx.LTV) || !isNaN(tx.Price) {
		t.Error("absent numeric columns should back-fill as null")
	}
	if ds.Has(ColQty) {
		t.Error("back-filled column should not be marked present")
	}
}

func TestStoreLoad_UnparseableCells(t *testing.T) {
	csv := `date,order_id,revenue,qty
2024-01-01,O1,abc,2
not-a-date,O2,10,xyz`

	store := NewStore(testLogger())
	ds, err := store.Load(context.Background(), createTempCSV(t, csv))
	if err != nil {
		t.Fatal(err)
	}
	if !isNaN(ds.Rows[0].Revenue) {
		t.Error("unparseable revenue should be null, not an error")
	}
	if !ds.Rows[1].Date.IsZero() {
		t.Error("unparseable date should be null")
	}
	if !isNaN(ds.Rows[1].Qty) {
		t.Error("unparseable qty should be null")
	}
}

func TestStoreLoad_AllDatesNullSubstitutesToday(t *testing.T) {
	csv := "date,revenue\nbogus,10\nworse,20\n"

	store := NewStore(testLogger())
	ds, err := store.Load(context.Background(), createTempCSV(t, csv))
	if err != nil {
		t.Fatal(err)
	}

	min, max, ok := ds.DateRange()
	if !ok {
		t.Fatal("expected a date range after substitution")
	}
	if !min.Equal(max) {
		t.Errorf("expected min == max, got %v / %v", min, max)
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !min.Equal(today) {
		t.Errorf("expected today %v, got %v", today, min)
	}

	// A range pinned to that exact day matches the full dataset.
	filtered := Filter(ds, FilterSpec{Start: today, End: today})
	if len(filtered.Rows) != len(ds.Rows) {
		t.Errorf("expected %d rows, got %d", len(ds.Rows), len(filtered.Rows))
	}
}

func TestStoreLoad_FallbackLocations(t *testing.T) {
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")
	if err := os.MkdirAll(assets, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "data.csv"), []byte("date,revenue\n2024-01-01,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	store := NewStore(testLogger())
	ds, err := store.Load(context.Background(), filepath.Join("elsewhere", "data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("expected fallback load from assets/, got %d rows", len(ds.Rows))
	}
}

func TestStore_MemoizationAndInvalidate(t *testing.T) {
	path := createTempCSV(t, "date,revenue\n2024-01-01,5\n")
	store := NewStore(testLogger())

	first, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("unchanged file should return the cached dataset")
	}

	// Rewrite with the same mtime: still a cache hit.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("date,revenue\n2024-01-01,5\n2024-01-02,7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}
	cached, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached.Rows) != 1 {
		t.Errorf("expected stale cached dataset, got %d rows", len(cached.Rows))
	}

	store.Invalidate(path)
	fresh, err := store.Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh.Rows) != 2 {
		t.Errorf("expected re-read after Invalidate, got %d rows", len(fresh.Rows))
	}
}
