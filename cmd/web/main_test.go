package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ops-dashboard/internal/config"
	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/middleware"
	"ops-dashboard/internal/server"
)

const testCSV = `date,order_id,product_id,sku,product_name,category,price,cost,qty,revenue,channel,city,warehouse,inventory_on_hand,ltv,customer_id,first_order
2024-01-15,O001,P001,SKU-1,Laptop,Electronics,999.99,600,1,999.99,web,Austin,WH1,50,1200,C001,true
2024-02-10,O002,P002,SKU-2,Mouse,Electronics,29.99,12,2,59.98,store,Dallas,WH2,100,300,C002,false
2024-03-05,O003,P003,SKU-3,Keyboard,Electronics,79.99,30,1,79.99,web,Austin,WH1,75,500,C003,true
`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "transactions.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         8086,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Data:   config.DataConfig{CSVFile: path},
		Logger: config.LoggerConfig{Level: "error", Format: "text"},
		Security: config.SecurityConfig{
			EnableRateLimit: false,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8086"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
		Dashboard: config.DashboardConfig{TopN: 8, StockThreshold: 10, Granularity: "month"},
	}

	srv := server.NewServer(dataset.NewStore(logger), cfg, logger)
	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
	)(srv)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	handler := newTestServer(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/summary", http.StatusOK, "application/json"},
		{"/api/revenue-series", http.StatusOK, "application/json"},
		{"/api/top-products", http.StatusOK, "application/json"},
		{"/api/channel-mix", http.StatusOK, "application/json"},
		{"/api/catalog", http.StatusOK, "application/json"},
		{"/api/inventory", http.StatusOK, "application/json"},
		{"/api/low-stock", http.StatusOK, "application/json"},
		{"/api/roas", http.StatusOK, "application/json"},
		{"/api/funnel", http.StatusOK, "application/json"},
		{"/api/top-customers", http.StatusOK, "application/json"},
		{"/api/cohorts", http.StatusOK, "application/json"},
		{"/api/filters", http.StatusOK, "application/json"},
		{"/api/export.csv", http.StatusOK, "text/csv"},
		{"/sse/refresh", http.StatusOK, "text/event-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_JSONResponse(t *testing.T) {
	handler := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/top-products", nil)
	handler.ServeHTTP(w, r)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	data, ok := response["data"].([]interface{})
	if !ok {
		t.Fatalf("expected data array in response")
	}
	if len(data) != 3 {
		t.Fatalf("expected 3 products, got %d", len(data))
	}

	item, ok := data[0].(map[string]interface{})
	if !ok {
		t.Fatal("invalid product structure")
	}
	if name, hasName := item["product_name"].(string); !hasName || name != "Laptop" {
		t.Errorf("expected Laptop first by revenue, got %v", item["product_name"])
	}
	if revenue, hasRev := item["revenue"].(float64); !hasRev || revenue != 999.99 {
		t.Errorf("expected revenue 999.99, got %v", item["revenue"])
	}
}

func TestServer_FilteredRequestFlowsThroughStack(t *testing.T) {
	handler := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/summary?start=2024-02-01&end=2024-12-31", nil)
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Error("expected request id header from middleware")
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	data := response["data"].(map[string]interface{})
	if revenue, _ := data["revenue"].(float64); revenue != 59.98+79.99 {
		t.Errorf("revenue = %v, want %v", revenue, 59.98+79.99)
	}
}

func TestServer_ErrorHandling(t *testing.T) {
	handler := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/summary", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"GET", "/admin/reload", http.StatusMethodNotAllowed},
		{"GET", "/api/unknown", http.StatusNotFound},
		{"GET", "/api/summary?end=not-a-date", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestServer_DashboardPage(t *testing.T) {
	handler := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Operations Dashboard") {
		t.Error("dashboard should contain title")
	}
	if !strings.Contains(body, "@get('/sse/refresh')") {
		t.Error("dashboard should wire the refresh endpoint")
	}
	if !strings.Contains(body, "datastar.js") {
		t.Error("dashboard should load the datastar bundle")
	}
	if csp := w.Header().Get("Content-Security-Policy"); csp == "" {
		t.Error("expected security headers on the page response")
	}
}
