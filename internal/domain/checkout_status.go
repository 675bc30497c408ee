package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle            CheckoutStatus = "IDLE"
	CheckoutStatusAwaitingDetails CheckoutStatus = "AWAITING_DETAILS"
	CheckoutStatusValidating      CheckoutStatus = "VALIDATING"
	CheckoutStatusAwaitingGateway CheckoutStatus = "AWAITING_GATEWAY"
	CheckoutStatusSucceeded       CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed          CheckoutStatus = "FAILED"
	CheckoutStatusCancelled       CheckoutStatus = "CANCELLED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed || s == CheckoutStatusCancelled
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:            {CheckoutStatusAwaitingDetails},
	CheckoutStatusAwaitingDetails: {CheckoutStatusValidating, CheckoutStatusIdle},
	CheckoutStatusValidating:      {CheckoutStatusAwaitingGateway, CheckoutStatusIdle},
	CheckoutStatusAwaitingGateway: {CheckoutStatusSucceeded, CheckoutStatusFailed, CheckoutStatusCancelled},
	CheckoutStatusSucceeded:       {CheckoutStatusIdle},
	CheckoutStatusFailed:          {CheckoutStatusIdle},
	CheckoutStatusCancelled:       {CheckoutStatusIdle},
}

// CanTransitionTo reports whether the checkout state machine allows moving
// from one status to another.
func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
