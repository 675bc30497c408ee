package httpapi

import (
	"net/http"

	"github.com/shittu-qudus/BLACKSFIT/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Catalog
}

func NewProductHandler(c *catalog.Catalog) *ProductHandler {
	return &ProductHandler{catalog: c}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Products())
}
