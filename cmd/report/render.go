package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/export"
	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
)

type renderOptions struct {
	topN        int
	threshold   int
	granularity metrics.Granularity
	format      string
}

// report bundles every aggregate the CLI prints. The cohort matrix is
// computed from the full dataset, everything else from the filtered one.
type report struct {
	Summary      models.Summary              `json:"summary"`
	Series       []models.RevenuePoint       `json:"revenue_series"`
	TopProducts  []models.ProductRevenue     `json:"top_products"`
	ChannelMix   []models.ChannelRevenue     `json:"channel_mix"`
	Inventory    []models.WarehouseInventory `json:"inventory"`
	LowStock     []models.StockLevel         `json:"low_stock"`
	ROAS         models.ROASReport           `json:"roas"`
	Funnel       models.FunnelReport         `json:"funnel"`
	TopCustomers []models.CustomerRevenue    `json:"top_customers"`
	Cohorts      models.CohortMatrix         `json:"cohorts"`
}

func buildReport(full, filtered *dataset.Dataset, opts renderOptions) report {
	return report{
		Summary:      metrics.Summarize(filtered),
		Series:       metrics.RevenueSeries(filtered, opts.granularity),
		TopProducts:  metrics.TopProducts(filtered, opts.topN),
		ChannelMix:   metrics.ChannelMix(filtered),
		Inventory:    metrics.InventoryByWarehouse(filtered),
		LowStock:     metrics.LowStock(filtered, opts.threshold),
		ROAS:         metrics.ChannelROAS(filtered),
		Funnel:       metrics.Funnel(filtered),
		TopCustomers: metrics.TopCustomers(filtered),
		Cohorts:      metrics.Cohorts(full),
	}
}

func render(w io.Writer, full, filtered *dataset.Dataset, opts renderOptions) error {
	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(buildReport(full, filtered, opts))
	case "csv":
		// The raw filtered rows, same artifact as the web export.
		return export.WriteCSV(w, filtered)
	case "table":
		return renderTables(w, buildReport(full, filtered, opts))
	}
	return fmt.Errorf("unknown format %q, want table, json or csv", opts.format)
}

func renderTables(w io.Writer, rep report) error {
	summary := newTable(w, "KPI", "Value")
	summary.AppendRow(table.Row{"Revenue", money(rep.Summary.Revenue)})
	summary.AppendRow(table.Row{"Orders", rep.Summary.Orders})
	summary.AppendRow(table.Row{"Avg order value", money(rep.Summary.AvgOrderValue)})
	summary.AppendRow(table.Row{"Avg LTV", money(rep.Summary.AvgLTV)})
	summary.AppendRow(table.Row{"New customers", rep.Summary.NewCustomers})
	summary.Render()

	series := newTable(w, "Bucket", "Revenue")
	for _, p := range rep.Series {
		series.AppendRow(table.Row{p.Bucket, money(p.Revenue)})
	}
	series.Render()

	products := newTable(w, "Product", "Revenue")
	for _, p := range rep.TopProducts {
		products.AppendRow(table.Row{p.ProductName, money(p.Revenue)})
	}
	products.Render()

	mix := newTable(w, "Channel", "Revenue")
	for _, c := range rep.ChannelMix {
		mix.AppendRow(table.Row{c.Channel, money(c.Revenue)})
	}
	mix.Render()

	stock := newTable(w, "Product", "On hand", "Status")
	for _, s := range rep.LowStock {
		stock.AppendRow(table.Row{s.ProductName, fmt.Sprintf("%.1f", s.OnHand), s.Status})
	}
	stock.Render()

	if len(rep.ROAS.MissingColumns) > 0 {
		fmt.Fprintf(w, "ROAS unavailable: add columns %v to the source file\n", rep.ROAS.MissingColumns)
	}
	if len(rep.Cohorts.MissingColumns) > 0 {
		fmt.Fprintf(w, "Cohorts unavailable: add columns %v to the source file\n", rep.Cohorts.MissingColumns)
	}
	return nil
}

func newTable(w io.Writer, headers ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(headers))
	return t
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
