package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// Precondition errors. Each is detected synchronously before any external
// call, is user-correctable and is never retried automatically.
var (
	ErrGatewayNotReady    = errors.New("payment system is not ready, please refresh the page and try again")
	ErrInvalidPublicKey   = errors.New("invalid payment configuration, please contact support")
	ErrMissingDetails     = errors.New("please fill in all required fields")
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrEmptyCart          = errors.New("your cart is empty or invalid")
	ErrCheckoutInProgress = errors.New("a payment session is already in progress")
	ErrNoPaymentInFlight  = errors.New("no payment session awaiting a result")
	ErrReferenceMismatch  = errors.New("payment result does not match the pending attempt")
)

// SetupError is a gateway invocation failure translated to a targeted
// user-facing message. It always returns the orchestrator to Idle without a
// session having been opened.
type SetupError struct {
	Message string
	Err     error
}

func (e *SetupError) Error() string { return e.Message }
func (e *SetupError) Unwrap() error { return e.Err }

// classifySetupError inspects the raw failure for amount/email/credential
// hints and produces the matching message, falling back to a generic one.
func classifySetupError(err error) *SetupError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "amount"):
		return &SetupError{Message: "Invalid payment amount. Please refresh and try again.", Err: err}
	case strings.Contains(msg, "email"):
		return &SetupError{Message: "Invalid email address format.", Err: err}
	case strings.Contains(msg, "key"):
		return &SetupError{Message: "Payment configuration error. Please contact support.", Err: err}
	default:
		return &SetupError{Message: fmt.Sprintf("Payment initialization failed: %v. Please try again.", err), Err: err}
	}
}
