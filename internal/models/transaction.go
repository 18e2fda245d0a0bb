package models

import (
	"math"
	"time"
)

// Transaction is one order-line record from the source file. Every expected
// column is materialized as a field so downstream code never has to probe for
// its existence. Missing values use in-band null markers: the zero time.Time
// for dates, NaN for numerics and the empty string for text.
type Transaction struct {
	Date            time.Time
	OrderID         string
	ProductID       string
	SKU             string
	ProductName     string
	Category        string
	Price           float64
	Cost            float64
	Qty             float64
	Revenue         float64
	Channel         string
	City            string
	Warehouse       string
	InventoryOnHand float64
	LTV             float64
	CustomerID      string
	FirstOrder      bool

	// Optional columns, only populated when the source carries them.
	Spend          float64
	Visits         float64
	AddToCart      float64
	Checkout       float64
	FirstOrderDate time.Time
}

// NullFloat is the in-band marker for a missing numeric cell.
func NullFloat() float64 { return math.NaN() }

// IsNull reports whether a numeric cell is missing.
func IsNull(v float64) bool { return math.IsNaN(v) }

// Summary carries the scalar KPIs for the executive screen.
type Summary struct {
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
	AvgLTV        float64 `json:"avg_ltv"`
	NewCustomers  int     `json:"new_customers"`
}

// RevenuePoint is one bucket of the revenue time series.
type RevenuePoint struct {
	Bucket  string  `json:"bucket"`
	Revenue float64 `json:"revenue"`
}

type ProductRevenue struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Revenue     float64 `json:"revenue"`
}

type ChannelRevenue struct {
	Channel string  `json:"channel"`
	Revenue float64 `json:"revenue"`
}

// CatalogRow is one SKU line of the product table. Revenue and Margin are
// derived from the coerced price/cost/qty, not read from the source.
type CatalogRow struct {
	ProductID   string  `json:"product_id"`
	SKU         string  `json:"sku"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	Qty         float64 `json:"qty"`
	Revenue     float64 `json:"revenue"`
	Margin      float64 `json:"margin"`
}

type WarehouseInventory struct {
	Warehouse string  `json:"warehouse"`
	OnHand    float64 `json:"inventory_on_hand"`
}

type StockLevel struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	OnHand      float64 `json:"inventory_on_hand"`
	Status      string  `json:"status"`
}

// ChannelROAS holds per-channel spend efficiency. ROAS is nil when the
// channel's spend sum is not positive.
type ChannelROAS struct {
	Channel string   `json:"channel"`
	Spend   float64  `json:"spend"`
	Revenue float64  `json:"revenue"`
	ROAS    *float64 `json:"roas"`
}

// ROASReport is empty, with MissingColumns naming what would unlock it, when
// the source has no spend column.
type ROASReport struct {
	Channels       []ChannelROAS `json:"channels"`
	MissingColumns []string      `json:"missing_columns,omitempty"`
}

type FunnelStage struct {
	Stage string  `json:"stage"`
	Value float64 `json:"value"`
}

type FunnelReport struct {
	Stages         []FunnelStage `json:"stages"`
	MissingColumns []string      `json:"missing_columns,omitempty"`
}

type CustomerRevenue struct {
	CustomerID string  `json:"customer_id"`
	Revenue    float64 `json:"revenue"`
}

// CohortMatrix counts distinct customers per first-order month (rows) and
// order month (columns). Cells with no customers are zero, not omitted.
type CohortMatrix struct {
	Months         []string    `json:"months"`
	Rows           []CohortRow `json:"rows"`
	MissingColumns []string    `json:"missing_columns,omitempty"`
}

type CohortRow struct {
	FirstMonth string `json:"first_month"`
	Counts     []int  `json:"counts"`
}

// FilterOptions feeds the sidebar widgets: the distinct values present in the
// loaded dataset plus its date span.
type FilterOptions struct {
	Categories []string   `json:"categories"`
	Channels   []string   `json:"channels"`
	MinDate    *time.Time `json:"min_date"`
	MaxDate    *time.Time `json:"max_date"`
}
