package domain

// CartLine is one product entry in the cart. Name, price and image are
// denormalized from the product at the time of first addition, so later
// catalog changes do not affect carts already holding the product.
type CartLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PhotoURL  string  `json:"photo_url"`
	Quantity  int32   `json:"quantity"`
}

// Subtotal returns price x quantity for this line.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
