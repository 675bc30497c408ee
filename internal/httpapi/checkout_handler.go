package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shittu-qudus/BLACKSFIT/internal/checkout"
	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
	"github.com/shittu-qudus/BLACKSFIT/internal/gateway"
)

type CheckoutHandler struct {
	bootstrap *gateway.Bootstrap
}

func NewCheckoutHandler(b *gateway.Bootstrap) *CheckoutHandler {
	return &CheckoutHandler{bootstrap: b}
}

type ReadyResponseDTO struct {
	State gateway.State `json:"state"`
	Error string        `json:"error,omitempty"`
}

type StatusResponseDTO struct {
	CheckoutStatus domain.CheckoutStatus `json:"checkout_status"`
	EmailStatus    string                `json:"email_status,omitempty"`
}

// Ready triggers the gateway bootstrap on first need (the checkout UI
// becoming visible) and reports its state.
func (h *CheckoutHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.bootstrap.Ensure(r.Context()); err != nil {
		respondJSON(w, http.StatusOK, ReadyResponseDTO{State: h.bootstrap.State(), Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, ReadyResponseDTO{State: h.bootstrap.State()})
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	var details domain.CustomerDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := sess.Checkout.Begin(r.Context(), details)
	if err != nil {
		status, code := mapCheckoutError(err)
		respondError(w, status, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *CheckoutHandler) Callback(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	var result domain.PaymentResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome, err := sess.Checkout.HandleCallback(r.Context(), result)
	if err != nil {
		status, code := mapCheckoutError(err)
		respondError(w, status, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	if err := sess.Checkout.HandleClose(); err != nil {
		status, code := mapCheckoutError(err)
		respondError(w, status, code, err.Error())
		return
	}
	st, _ := sess.Checkout.Status()
	respondJSON(w, http.StatusOK, StatusResponseDTO{CheckoutStatus: st})
}

func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	st, emailStatus := sess.Checkout.Status()
	respondJSON(w, http.StatusOK, StatusResponseDTO{CheckoutStatus: st, EmailStatus: emailStatus})
}

func mapCheckoutError(err error) (int, string) {
	var setupErr *checkout.SetupError
	switch {
	case errors.Is(err, checkout.ErrGatewayNotReady):
		return http.StatusServiceUnavailable, "gateway_not_ready"
	case errors.Is(err, checkout.ErrInvalidPublicKey):
		return http.StatusInternalServerError, "invalid_configuration"
	case errors.Is(err, checkout.ErrMissingDetails):
		return http.StatusBadRequest, "missing_details"
	case errors.Is(err, checkout.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid_email"
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return http.StatusConflict, "checkout_in_progress"
	case errors.Is(err, checkout.ErrNoPaymentInFlight):
		return http.StatusConflict, "no_payment_in_flight"
	case errors.Is(err, checkout.ErrReferenceMismatch):
		return http.StatusConflict, "reference_mismatch"
	case errors.As(err, &setupErr):
		return http.StatusBadGateway, "gateway_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
