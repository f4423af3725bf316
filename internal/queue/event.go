package queue

// OrderEvent is the message published to the orders.events queue
// whenever an order is created or changes status. The kitchen ticket
// consumer and any external integrations read this shape.
type OrderEvent struct {
	Kind                string `json:"kind"` // "created" | "status_changed"
	OrderID             string `json:"order_id"`
	TableNumber         int64  `json:"table_number"`
	TotalAmount         string `json:"total_amount"`
	PaymentStatus       string `json:"payment_status"`
	FulfillmentStatus   string `json:"fulfillment_status"`
	CustomerName        string `json:"customer_name,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	ItemCount           int    `json:"item_count"`
	OccurredAt          string `json:"occurred_at"`
}
