package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
)

// The dashboard shell only wires datastar signals to the SSE refresh
// endpoint; chart and table rendering is entirely client-side.
var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Operations Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
</head>
<body data-signals="{summary: {}, revenueSeries: [], topProducts: [], channelMix: [], inventory: [], roas: {}, funnel: {}, topCustomers: [], cohorts: {}}"
      data-on-load="@get('/sse/refresh')">
<h1>Operations Dashboard</h1>
<section id="kpis" data-text="JSON.stringify($summary)"></section>
<section id="low-stock-content"></section>
</body>
</html>`))

type PageHandlers struct {
	logger *slog.Logger
}

func NewPageHandlers(logger *slog.Logger) *PageHandlers {
	return &PageHandlers{logger: logger}
}

func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", cacheMaxAge)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, nil); err != nil {
		h.logger.Error("render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
