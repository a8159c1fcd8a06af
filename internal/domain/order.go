package domain

// Order is the order row as written to the store.
type Order struct {
	UserID          string `json:"user_id"`
	ShippingAddress string `json:"shipping_address"`
	RecipientName   string `json:"recipient_name"`
}

// OrderEntry is the order as submitted. Fields must be present; their
// content, empty strings included, is left to the store.
type OrderEntry struct {
	UserID          *string `json:"user_id" validate:"required"`
	ShippingAddress *string `json:"shipping_address" validate:"required"`
	RecipientName   *string `json:"recipient_name" validate:"required"`
}

// Order returns the store row. The entry must have been validated.
func (e OrderEntry) Order() Order {
	return Order{
		UserID:          *e.UserID,
		ShippingAddress: *e.ShippingAddress,
		RecipientName:   *e.RecipientName,
	}
}

// OrderItem is a line item as written to the store.
type OrderItem struct {
	OrderID  int64 `json:"order_id"`
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// ItemEntry is a line item as submitted by the caller, before it is tied to an order.
type ItemEntry struct {
	ItemID   *WholeNumber `json:"item_id" validate:"required"`
	Quantity WholeNumber  `json:"quantity" validate:"gt=0"`
}

type SubmitRequest struct {
	Order *OrderEntry `json:"order" validate:"required"`
	Items []ItemEntry `json:"items" validate:"required,dive"`
}

// DetailItem is one priced line of the order_details view. ItemPrice is nil
// when the view could not resolve a price.
type DetailItem struct {
	Quantity  int      `json:"quantity"`
	ItemPrice *float64 `json:"item_price"`
}

type OrderDetailRow struct {
	OrderID    int64        `json:"order_id"`
	OrderItems []DetailItem `json:"order_items"`
}

type OrderTotal struct {
	OrderID int64   `json:"order_id"`
	Total   float64 `json:"total"`
}
