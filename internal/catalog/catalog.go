package catalog

import (
	"errors"

	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is the static product list supplied at startup. The storefront
// never fetches or refreshes it.
type Catalog struct {
	products []domain.Product
	byID     map[int64]domain.Product
}

func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]domain.Product, len(products)),
	}
	copy(c.products, products)
	for _, p := range products {
		c.byID[p.ID] = p
	}
	return c
}

// Default returns the BLACKSFIT product line.
func Default() *Catalog {
	return New([]domain.Product{
		{ID: 1, Name: "ATL", PhotoURL: "/image/ATL.jpeg", Size: 42, Price: 35000},
		{ID: 2, Name: "bla", PhotoURL: "/image/bla.jpeg", Size: 44, Price: 35000},
		{ID: 3, Name: "black", PhotoURL: "/image/blacksfit.jpeg", Size: 44, Price: 35000},
		{ID: 4, Name: "blanck", PhotoURL: "/image/blank.jpeg", Size: 44, Price: 35000},
		{ID: 5, Name: "eyo", PhotoURL: "/image/eyo.jpeg", Size: 44, Price: 35000},
		{ID: 6, Name: "ibadan", PhotoURL: "/image/ibadan.jpeg", Size: 44, Price: 35000},
		{ID: 7, Name: "kwara", PhotoURL: "/image/kwara.jpeg", Size: 44, Price: 35000},
		{ID: 8, Name: "lagos", PhotoURL: "/image/lagos.jpeg", Size: 44, Price: 35000},
		{ID: 9, Name: "map", PhotoURL: "/image/map.jpeg", Size: 44, Price: 35000},
		{ID: 10, Name: "ogun", PhotoURL: "/image/ogun.jpeg", Size: 44, Price: 35000},
		{ID: 11, Name: "bus", PhotoURL: "/image/bus.jpeg", Size: 44, Price: 35000},
	})
}

// Products returns a copy of the catalog in display order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) ByID(id int64) (domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}
