package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"ops-dashboard/internal/config"
	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
)

var lowStockTableTemplate = template.Must(template.New("lowStockTable").Parse(`
<div id="low-stock-content">
<table class="modern-table">
<thead><tr><th>Product</th><th>On Hand</th><th>Status</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.ProductName}}</td>
<td>{{printf "%.1f" .OnHand}}</td>
<td><span class="status-badge status-{{.Status}}">{{.Status}}</span></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

// SSEHandlers pushes recomputed aggregates to the dashboard over datastar
// SSE whenever the page asks for a refresh (filter change, initial load).
type SSEHandlers struct {
	store    *dataset.Store
	csvPath  string
	defaults config.DashboardConfig
	logger   *slog.Logger
}

func NewSSEHandlers(store *dataset.Store, csvPath string, defaults config.DashboardConfig, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:    store,
		csvPath:  csvPath,
		defaults: defaults,
		logger:   logger,
	}
}

func renderLowStockTable(rows []models.StockLevel) (string, error) {
	var buf strings.Builder
	err := lowStockTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

// HandleRefresh recomputes every screen's aggregates for the filter spec in
// the query string and pushes them as one signal patch plus the low-stock
// table element.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	full, err := h.store.Load(r.Context(), h.csvPath)
	if err != nil {
		h.logger.Error("load dataset for refresh", "error", err)
		return
	}
	spec, err := parseFilterSpec(r)
	if err != nil {
		h.logger.Warn("bad filter spec on refresh", "error", err)
		return
	}
	filtered := dataset.Filter(full, spec)

	gran, err := metrics.ParseGranularity(h.defaults.Granularity)
	if err != nil {
		gran = metrics.Monthly
	}

	signals, err := json.Marshal(map[string]any{
		"summary":       metrics.Summarize(filtered),
		"revenueSeries": metrics.RevenueSeries(filtered, gran),
		"topProducts":   metrics.TopProducts(filtered, h.defaults.TopN),
		"channelMix":    metrics.ChannelMix(filtered),
		"inventory":     metrics.InventoryByWarehouse(filtered),
		"roas":          metrics.ChannelROAS(filtered),
		"funnel":        metrics.Funnel(filtered),
		"topCustomers":  metrics.TopCustomers(filtered),
		"cohorts":       metrics.Cohorts(full),
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	html, err := renderLowStockTable(metrics.LowStock(filtered, h.defaults.StockThreshold))
	if err != nil {
		h.logger.Error("render low stock table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
