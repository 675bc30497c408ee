package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shittu-qudus/BLACKSFIT/internal/catalog"
	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
)

type CartHandler struct {
	catalog *catalog.Catalog
}

func NewCartHandler(c *catalog.Catalog) *CartHandler {
	return &CartHandler{catalog: c}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type CartResponseDTO struct {
	Items         []domain.CartLine `json:"items"`
	Total         float64           `json:"total"`
	TotalQuantity int32             `json:"total_quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.catalog.ByID(req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "unknown product id")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	sess.Cart.Add(product)
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	sess.Cart.Increment(id)
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	sess.Cart.Decrement(id)
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	sess.Cart.Remove(id)
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	sess.Cart.Clear()
	respondJSON(w, http.StatusOK, cartResponse(sess))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid product id")
		return 0, false
	}
	return id, true
}

func cartResponse(sess *Session) CartResponseDTO {
	return CartResponseDTO{
		Items:         sess.Cart.Lines(),
		Total:         sess.Cart.Total(),
		TotalQuantity: sess.Cart.TotalQuantity(),
	}
}
