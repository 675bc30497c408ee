package domain

import "time"

type CartSnapshotItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int32   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// CartSnapshot is an immutable copy of the cart taken at a specific instant.
// The post-payment sequence operates only on the snapshot, never on the live
// cart, so mutations that land while notification is in flight cannot leak
// into the order summary.
type CartSnapshot struct {
	Items       []CartSnapshotItem `json:"items"`
	TotalAmount float64            `json:"total_amount"`
	Currency    string             `json:"currency"`
	CapturedAt  time.Time          `json:"captured_at"`
}
