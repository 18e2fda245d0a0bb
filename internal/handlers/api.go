package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ops-dashboard/internal/config"
	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/errors"
	"ops-dashboard/internal/export"
	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
	"ops-dashboard/internal/observability"
)

const cacheMaxAge = "public, max-age=300"

var cacheHeaders = map[string]string{"Cache-Control": cacheMaxAge}

// APIHandlers serves every aggregator over JSON. Each request re-runs the
// filter engine and the requested aggregator against the memoized Dataset;
// nothing is cached per filter value.
type APIHandlers struct {
	store    *dataset.Store
	csvPath  string
	defaults config.DashboardConfig
	logger   *slog.Logger
	started  time.Time
}

func NewAPIHandlers(store *dataset.Store, csvPath string, defaults config.DashboardConfig, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:    store,
		csvPath:  csvPath,
		defaults: defaults,
		logger:   logger,
		started:  time.Now(),
	}
}

// data loads the memoized Dataset and applies the request's filter spec.
func (h *APIHandlers) data(r *http.Request) (full, filtered *dataset.Dataset, err error) {
	ctx, span := observability.StartSpan(r.Context(), "dataset.load")
	defer span.Finish()

	full, err = h.store.Load(ctx, h.csvPath)
	if err != nil {
		span.SetError(err)
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "failed to load dataset")
	}

	spec, err := parseFilterSpec(r)
	if err != nil {
		return nil, nil, err
	}
	return full, dataset.Filter(full, spec), nil
}

// parseFilterSpec reads the global filter inputs from the query string.
// Absent parameters leave the predicate off; "All" is the unset sentinel.
func parseFilterSpec(r *http.Request) (dataset.FilterSpec, error) {
	q := r.URL.Query()
	spec := dataset.FilterSpec{
		Category: q.Get("category"),
		Channel:  q.Get("channel"),
	}

	if v := q.Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return spec, errors.Validation(fmt.Sprintf("invalid start date %q, want YYYY-MM-DD", v))
		}
		spec.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return spec, errors.Validation(fmt.Sprintf("invalid end date %q, want YYYY-MM-DD", v))
		}
		spec.End = t
	}
	return spec, nil
}

func (h *APIHandlers) intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Validation(fmt.Sprintf("invalid %s %q, want an integer", name, v))
	}
	return n, nil
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.Summarize(filtered), cacheHeaders)
}

func (h *APIHandlers) HandleRevenueSeries(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	granParam := r.URL.Query().Get("granularity")
	if granParam == "" {
		granParam = h.defaults.Granularity
	}
	gran, err := metrics.ParseGranularity(granParam)
	if err != nil {
		h.fail(w, r, errors.Validation(err.Error()))
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.RevenueSeries(filtered, gran), cacheHeaders)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.intParam(r, "n", h.defaults.TopN)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.TopProducts(filtered, metrics.ClampTopN(n)), cacheHeaders)
}

func (h *APIHandlers) HandleChannelMix(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.ChannelMix(filtered), cacheHeaders)
}

func (h *APIHandlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.Catalog(filtered), cacheHeaders)
}

func (h *APIHandlers) HandleInventory(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.InventoryByWarehouse(filtered), cacheHeaders)
}

func (h *APIHandlers) HandleLowStock(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	threshold, err := h.intParam(r, "threshold", h.defaults.StockThreshold)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if threshold < 0 {
		h.fail(w, r, errors.Validation("threshold must be >= 0"))
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.LowStock(filtered, threshold), cacheHeaders)
}

func (h *APIHandlers) HandleROAS(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.ChannelROAS(filtered), cacheHeaders)
}

func (h *APIHandlers) HandleFunnel(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.Funnel(filtered), cacheHeaders)
}

func (h *APIHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.TopCustomers(filtered), cacheHeaders)
}

// HandleCohorts computes the cohort matrix over the unfiltered dataset:
// retention spans all history regardless of the active filters.
func (h *APIHandlers) HandleCohorts(w http.ResponseWriter, r *http.Request) {
	full, _, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, metrics.Cohorts(full), cacheHeaders)
}

// HandleFilterOptions reports what the sidebar widgets can offer: distinct
// categories and channels plus the dataset's date span.
func (h *APIHandlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	full, _, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	opts := models.FilterOptions{
		Categories: full.Categories(),
		Channels:   full.Channels(),
	}
	if min, max, ok := full.DateRange(); ok {
		opts.MinDate, opts.MaxDate = &min, &max
	}
	errors.WriteSuccessWithHeaders(w, opts, cacheHeaders)
}

func (h *APIHandlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, filtered); err != nil {
		h.fail(w, r, errors.ExportFailed(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename))
	w.Write(buf.Bytes())
}

func (h *APIHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	_, filtered, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, filtered); err != nil {
		h.fail(w, r, errors.ExportFailed(err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFilename))
	w.Write(buf.Bytes())
}

// HandleReload drops the memoized Dataset so the next request re-reads the
// source file.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.store.Invalidate(h.csvPath)
	h.logger.Info("dataset cache invalidated", "path", h.csvPath)
	errors.WriteSuccess(w, map[string]string{"status": "reloaded"})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	full, _, err := h.data(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"rows":         len(full.Rows),
		"source":       full.Source,
		"source_found": full.Source != "",
		"loaded_at":    full.LoadedAt,
		"categories":   len(full.Categories()),
		"channels":     len(full.Channels()),
		"uptime":       time.Since(h.started).String(),
	})
}
