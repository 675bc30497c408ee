package notify

import (
	"context"
	"fmt"
	"net/url"
)

// Client is the external message-sending service. Send is the primary
// submission; SendForm is the service's alternate calling convention, used
// as the fallback transport with the same field set.
type Client interface {
	Send(ctx context.Context, serviceID, templateID string, params map[string]string, userID string) (*Response, error)
	SendForm(ctx context.Context, serviceID, templateID string, form url.Values, userID string) (*Response, error)
}

// Response is a successful submission acknowledgment.
type Response struct {
	Status int
	Text   string
}

// APIError carries the service's numeric status code, which decides fallback
// eligibility: 400/401-class means client misconfiguration, anything else is
// reported directly.
type APIError struct {
	Status int
	Text   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notification service error %d: %s", e.Status, e.Text)
}

// fallbackEligible reports whether the primary failure indicates
// misconfiguration rather than a transient fault.
func (e *APIError) fallbackEligible() bool {
	return e.Status == 400 || e.Status == 401
}
