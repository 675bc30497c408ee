package domain

// PaymentStatusSuccess is the only status value the gateway reports for a
// confirmed charge. Anything else is a non-success outcome.
const PaymentStatusSuccess = "success"

// PaymentResult is the gateway's client callback payload. It is the sole
// trusted signal that a charge occurred; the core does not verify it against
// the provider's server-side records.
type PaymentResult struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Trans       string `json:"trans,omitempty"`
	Transaction string `json:"transaction,omitempty"`
	TrxRef      string `json:"trxref,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Succeeded reports whether the gateway confirmed the charge.
func (r PaymentResult) Succeeded() bool {
	return r.Status == PaymentStatusSuccess
}
