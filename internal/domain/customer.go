package domain

import "strings"

// CustomerDetails is the customer input collected for one checkout attempt.
// It is transient: held only for the duration of the attempt and reset to the
// zero value after a successful order. It is never merged into the cart.
type CustomerDetails struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c CustomerDetails) Trimmed() CustomerDetails {
	return CustomerDetails{
		Email:     strings.TrimSpace(c.Email),
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Phone:     strings.TrimSpace(c.Phone),
		Address:   strings.TrimSpace(c.Address),
	}
}

// FullName joins first and last name for display and template fields.
func (c CustomerDetails) FullName() string {
	return c.FirstName + " " + c.LastName
}
