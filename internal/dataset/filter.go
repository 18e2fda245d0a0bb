package dataset

import (
	"time"

	"ops-dashboard/internal/models"
)

// All is the sentinel the presentation layer sends for "no selection".
const All = "All"

// FilterSpec is one render pass worth of filter state. Zero Start/End mean an
// unbounded side; empty or All category/channel mean the predicate is off.
// An inverted range is legal and simply matches nothing.
type FilterSpec struct {
	Start    time.Time
	End      time.Time
	Category string
	Channel  string
}

// Matches reports whether a row satisfies every active predicate. Rows with a
// null date never match an active date range.
func (s FilterSpec) Matches(tx models.Transaction) bool {
	if !s.Start.IsZero() || !s.End.IsZero() {
		if tx.Date.IsZero() {
			return false
		}
		if !s.Start.IsZero() && tx.Date.Before(s.Start) {
			return false
		}
		if !s.End.IsZero() && tx.Date.After(s.End) {
			return false
		}
	}
	if c := s.Category; c != "" && c != All && tx.Category != c {
		return false
	}
	if c := s.Channel; c != "" && c != All && tx.Channel != c {
		return false
	}
	return true
}

// Filter produces the subset of rows matching every active predicate,
// conjunctively combined. The input Dataset is never modified.
func Filter(ds *Dataset, spec FilterSpec) *Dataset {
	out := &Dataset{
		Present:  ds.Present,
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
	}
	for _, tx := range ds.Rows {
		if spec.Matches(tx) {
			out.Rows = append(out.Rows, tx)
		}
	}
	return out
}
