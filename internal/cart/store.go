package cart

import (
	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
)

// Store defines the cart operations exposed to the rest of the storefront.
//
// Mutations are deliberately error-free: incrementing or decrementing an
// absent product is a no-op, and Add merges into an existing line instead of
// duplicating it. The derived total is recomputed on every mutation and is
// never stored independently of the lines.
type Store interface {
	// Add inserts a new line with quantity 1, snapshotting the product's
	// current name/price/image, or increments the existing line's quantity.
	Add(p domain.Product)

	// Increment raises the matching line's quantity by 1. No-op if absent.
	Increment(productID int64)

	// Decrement lowers the matching line's quantity by 1, removing the line
	// entirely when it would reach 0. No-op if absent.
	Decrement(productID int64)

	// Remove deletes the line unconditionally, regardless of quantity.
	Remove(productID int64)

	// Clear empties all lines and resets the total to 0.
	Clear()

	// Lines returns a copy of the lines in insertion order.
	Lines() []domain.CartLine

	// Total returns the derived cart total.
	Total() float64

	// Len returns the number of lines.
	Len() int

	// TotalQuantity returns the summed quantity across all lines.
	TotalQuantity() int32

	// Snapshot captures an immutable copy of the cart for the post-payment
	// sequence.
	Snapshot() *domain.CartSnapshot
}
