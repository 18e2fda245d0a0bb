package server

import (
	"log/slog"
	"net/http"

	"ops-dashboard/internal/config"
	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/handlers"
)

type Server struct {
	mux  *http.ServeMux
	api  *handlers.APIHandlers
	sse  *handlers.SSEHandlers
	page *handlers.PageHandlers
}

func NewServer(store *dataset.Store, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		mux:  http.NewServeMux(),
		api:  handlers.NewAPIHandlers(store, cfg.Data.CSVFile, cfg.Dashboard, logger),
		sse:  handlers.NewSSEHandlers(store, cfg.Data.CSVFile, cfg.Dashboard, logger),
		page: handlers.NewPageHandlers(logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.page.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.api.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.api.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.api.HandleReload)

	// Aggregator endpoints; all accept the global filter query params.
	s.mux.HandleFunc("GET /api/summary", s.api.HandleSummary)
	s.mux.HandleFunc("GET /api/revenue-series", s.api.HandleRevenueSeries)
	s.mux.HandleFunc("GET /api/top-products", s.api.HandleTopProducts)
	s.mux.HandleFunc("GET /api/channel-mix", s.api.HandleChannelMix)
	s.mux.HandleFunc("GET /api/catalog", s.api.HandleCatalog)
	s.mux.HandleFunc("GET /api/inventory", s.api.HandleInventory)
	s.mux.HandleFunc("GET /api/low-stock", s.api.HandleLowStock)
	s.mux.HandleFunc("GET /api/roas", s.api.HandleROAS)
	s.mux.HandleFunc("GET /api/funnel", s.api.HandleFunnel)
	s.mux.HandleFunc("GET /api/top-customers", s.api.HandleTopCustomers)
	s.mux.HandleFunc("GET /api/cohorts", s.api.HandleCohorts)
	s.mux.HandleFunc("GET /api/filters", s.api.HandleFilterOptions)

	// Downloads of the currently filtered rows.
	s.mux.HandleFunc("GET /api/export.csv", s.api.HandleExportCSV)
	s.mux.HandleFunc("GET /api/export.xlsx", s.api.HandleExportXLSX)

	// Datastar SSE refresh for the dashboard page.
	s.mux.HandleFunc("GET /sse/refresh", s.sse.HandleRefresh)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
