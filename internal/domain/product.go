package domain

// Product is a catalog entry. Catalog data is supplied at startup and is
// read-only to the storefront core.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // naira, major units
	Size      int32   `json:"size"`
	PhotoURL  string  `json:"photo_url"`
	FullImage string  `json:"full_image,omitempty"`
}
