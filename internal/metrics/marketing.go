package metrics

import (
	"slices"

	"ops-dashboard/internal/dataset"
	"ops-dashboard/internal/models"
)

// ChannelMix sums revenue per channel, descending. Null channels group under
// the empty name.
func ChannelMix(ds *dataset.Dataset) []models.ChannelRevenue {
	groups := make(map[string]float64)
	for _, tx := range ds.Rows {
		if !models.IsNull(tx.Revenue) {
			groups[tx.Channel] += tx.Revenue
		}
	}

	out := make([]models.ChannelRevenue, 0, len(groups))
	for channel, revenue := range groups {
		out = append(out, models.ChannelRevenue{Channel: channel, Revenue: revenue})
	}
	slices.SortFunc(out, func(a, b models.ChannelRevenue) int {
		switch {
		case a.Revenue > b.Revenue:
			return -1
		case a.Revenue < b.Revenue:
			return 1
		default:
			return 0
		}
	})
	return out
}

// ChannelROAS divides summed revenue by summed spend per channel. Without a
// spend column in the source the report is a placeholder naming the column
// that would unlock it. A channel whose spend sum is not positive gets a null
// ROAS instead of a division fault.
func ChannelROAS(ds *dataset.Dataset) models.ROASReport {
	if !ds.Has(dataset.ColSpend) {
		return models.ROASReport{MissingColumns: []string{dataset.ColSpend}}
	}

	type acc struct {
		spend   float64
		revenue float64
	}
	groups := make(map[string]*acc)
	for _, tx := range ds.Rows {
		a := groups[tx.Channel]
		if a == nil {
			a = &acc{}
			groups[tx.Channel] = a
		}
		if !models.IsNull(tx.Spend) {
			a.spend += tx.Spend
		}
		if !models.IsNull(tx.Revenue) {
			a.revenue += tx.Revenue
		}
	}

	channels := make([]models.ChannelROAS, 0, len(groups))
	for channel, a := range groups {
		row := models.ChannelROAS{Channel: channel, Spend: a.spend, Revenue: a.revenue}
		if a.spend > 0 {
			roas := a.revenue / a.spend
			row.ROAS = &roas
		}
		channels = append(channels, row)
	}
	slices.SortFunc(channels, func(a, b models.ChannelROAS) int {
		switch {
		case a.Revenue > b.Revenue:
			return -1
		case a.Revenue < b.Revenue:
			return 1
		default:
			return 0
		}
	})
	return models.ROASReport{Channels: channels}
}

// Funnel stage labels, in order.
var funnelStages = []string{"Visits", "Add to Cart", "Checkout", "Purchased"}

// Funnel builds the fixed four-stage acquisition funnel. The first three
// stages are column sums that default to zero when the column is absent; the
// last is the distinct order count. Absent stage columns are reported so the
// presentation layer can say what data would complete the funnel.
func Funnel(ds *dataset.Dataset) models.FunnelReport {
	var missing []string
	for _, col := range []string{dataset.ColVisits, dataset.ColAddToCart, dataset.ColCheckout} {
		if !ds.Has(col) {
			missing = append(missing, col)
		}
	}

	values := []float64{
		sumValid(ds.Rows, func(tx models.Transaction) float64 { return tx.Visits }),
		sumValid(ds.Rows, func(tx models.Transaction) float64 { return tx.AddToCart }),
		sumValid(ds.Rows, func(tx models.Transaction) float64 { return tx.Checkout }),
		float64(countDistinct(ds.Rows, func(tx models.Transaction) string { return tx.OrderID })),
	}

	stages := make([]models.FunnelStage, len(funnelStages))
	for i, stage := range funnelStages {
		stages[i] = models.FunnelStage{Stage: stage, Value: values[i]}
	}
	return models.FunnelReport{Stages: stages, MissingColumns: missing}
}
