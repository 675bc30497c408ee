package gateway

import "context"

// CustomField is one entry of the opaque metadata payload handed to the
// gateway. It is carried for support/audit only, never trusted server-side.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

type Metadata struct {
	CustomFields []CustomField `json:"custom_fields"`
}

// SetupConfig is the payment session request. Amount is in the gateway's
// minor currency unit (kobo).
type SetupConfig struct {
	Key       string   `json:"key"`
	Email     string   `json:"email"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	Reference string   `json:"ref"`
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Phone     string   `json:"phone,omitempty"`
	Metadata  Metadata `json:"metadata"`
}

// Handler is the gateway's per-session handle. Present hands the session's
// UI to the user; it may be invoked once. Results never come back through
// the handler, only through the orchestrator's callback surface.
type Handler interface {
	Present(ctx context.Context) error
	AuthorizationURL() string
}

// Gateway opens payment sessions with the external provider.
type Gateway interface {
	Setup(ctx context.Context, cfg SetupConfig) (Handler, error)
}
