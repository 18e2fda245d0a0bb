package dataset

// Column names of the canonical transaction schema. The expected set is
// back-filled by the loader so every consumer may assume the fields exist;
// the optional set is only populated when the source header carries it.
const (
	ColDate            = "date"
	ColOrderID         = "order_id"
	ColProductID       = "product_id"
	ColSKU             = "sku"
	ColProductName     = "product_name"
	ColCategory        = "category"
	ColPrice           = "price"
	ColCost            = "cost"
	ColQty             = "qty"
	ColRevenue         = "revenue"
	ColChannel         = "channel"
	ColCity            = "city"
	ColWarehouse       = "warehouse"
	ColInventoryOnHand = "inventory_on_hand"
	ColLTV             = "ltv"
	ColCustomerID      = "customer_id"
	ColFirstOrder      = "first_order"

	ColSpend          = "spend"
	ColVisits         = "visits"
	ColAddToCart      = "add_to_cart"
	ColCheckout       = "checkout"
	ColFirstOrderDate = "first_order_date"
)

// ExpectedColumns is the fixed schema every Dataset carries, in export order.
func ExpectedColumns() []string {
	return []string{
		ColDate, ColOrderID, ColProductID, ColSKU, ColProductName,
		ColCategory, ColPrice, ColCost, ColQty, ColRevenue, ColChannel,
		ColCity, ColWarehouse, ColInventoryOnHand, ColLTV, ColCustomerID,
		ColFirstOrder,
	}
}

// OptionalColumns are recognized when present but never back-filled.
func OptionalColumns() []string {
	return []string{ColSpend, ColVisits, ColAddToCart, ColCheckout, ColFirstOrderDate}
}
