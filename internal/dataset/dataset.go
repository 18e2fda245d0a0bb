package dataset

import (
	"slices"
	"time"

	"ops-dashboard/internal/models"
)

// Dataset is the immutable in-memory table of transaction rows. Aggregators
// never mutate it; every derived table is newly allocated.
type Dataset struct {
	Rows []models.Transaction

	// Present records which recognized columns the source header actually
	// carried. The struct fields exist either way (absent expected columns
	// are back-filled as null), so Present is only the branch point for
	// missing-column policy, never for field access.
	Present map[string]bool

	// Source is the resolved path the rows were read from, empty when no
	// candidate location was readable.
	Source   string
	LoadedAt time.Time
}

// New builds a Dataset from in-memory rows, marking the given columns as
// present. With no columns it assumes the full expected schema. Used by tests
// and by the filter engine.
func New(rows []models.Transaction, cols ...string) *Dataset {
	if len(cols) == 0 {
		cols = ExpectedColumns()
	}
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	return &Dataset{Rows: rows, Present: present, LoadedAt: time.Now()}
}

// Has reports whether the source carried the named column.
func (d *Dataset) Has(col string) bool {
	return d.Present[col]
}

// Categories returns the sorted distinct non-null categories.
func (d *Dataset) Categories() []string {
	return d.distinct(func(tx models.Transaction) string { return tx.Category })
}

// Channels returns the sorted distinct non-null channels.
func (d *Dataset) Channels() []string {
	return d.distinct(func(tx models.Transaction) string { return tx.Channel })
}

func (d *Dataset) distinct(pick func(models.Transaction) string) []string {
	seen := make(map[string]bool)
	for _, tx := range d.Rows {
		if v := pick(tx); v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// DateRange returns the min and max non-null dates, or ok=false when no row
// has a parseable date.
func (d *Dataset) DateRange() (min, max time.Time, ok bool) {
	for _, tx := range d.Rows {
		if tx.Date.IsZero() {
			continue
		}
		if !ok || tx.Date.Before(min) {
			min = tx.Date
		}
		if !ok || tx.Date.After(max) {
			max = tx.Date
		}
		ok = true
	}
	return min, max, ok
}
