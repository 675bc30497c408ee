package notify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
)

// Delivery outcomes surfaced transiently to the user. They never affect the
// cart-clearing decision made by the checkout orchestrator.
const (
	StatusSent         = "Email sent successfully!"
	StatusSentFallback = "Email sent via alternative method!"
	StatusBothFailed   = "Both email methods failed"
)

// Config identifies the account, template and sender identity used for
// order confirmations.
type Config struct {
	ServiceID  string
	TemplateID string
	UserID     string
	FromName   string
	ReplyTo    string
}

// Dispatcher delivers order confirmations best-effort: one primary attempt,
// one fallback attempt when the primary failure looks like client
// misconfiguration, then give up.
type Dispatcher struct {
	client Client
	cfg    Config
	log    *logrus.Entry
	now    func() time.Time
}

func NewDispatcher(client Client, cfg Config, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		cfg:    cfg,
		log:    log.WithField("component", "notify.dispatcher"),
		now:    time.Now,
	}
}

// Dispatch sends the confirmation for a paid order and returns a status
// string for transient display.
func (d *Dispatcher) Dispatch(ctx context.Context, snap *domain.CartSnapshot, customer domain.CustomerDetails, result domain.PaymentResult) string {
	params := d.templateParams(snap, customer, result)

	_, err := d.client.Send(ctx, d.cfg.ServiceID, d.cfg.TemplateID, params, d.cfg.UserID)
	if err == nil {
		d.log.WithField("reference", result.Reference).Info("confirmation sent")
		return StatusSent
	}
	d.log.WithError(err).WithField("reference", result.Reference).Warn("primary send failed")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.fallbackEligible() {
		return fmt.Sprintf("Email failed: %v", err)
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	if _, errAlt := d.client.SendForm(ctx, d.cfg.ServiceID, d.cfg.TemplateID, form, d.cfg.UserID); errAlt != nil {
		d.log.WithError(errAlt).WithField("reference", result.Reference).Error("fallback send failed")
		return StatusBothFailed
	}

	d.log.WithField("reference", result.Reference).Info("confirmation sent via fallback")
	return StatusSentFallback
}

func (d *Dispatcher) templateParams(snap *domain.CartSnapshot, customer domain.CustomerDetails, result domain.PaymentResult) map[string]string {
	now := d.now()
	return map[string]string{
		"to_name":               customer.FirstName,
		"to_email":              customer.Email,
		"customer_name":         customer.FullName(),
		"customer_email":        customer.Email,
		"customer_phone":        orNotProvided(customer.Phone),
		"customer_address":      orNotProvided(customer.Address),
		"order_total":           FormatNaira(snap.TotalAmount),
		"order_items":           formatItems(snap.Items),
		"transaction_reference": result.Reference,
		"payment_status":        result.Status,
		"order_date":            now.Format("1/2/2006"),
		"order_time":            now.Format("3:04:05 PM"),
		"from_name":             d.cfg.FromName,
		"reply_to":              d.cfg.ReplyTo,
	}
}

func formatItems(items []domain.CartSnapshotItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("• %s (Qty: %d) - %s", it.ProductName, it.Quantity, FormatNaira(it.Subtotal)))
	}
	return strings.Join(lines, "\n")
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

var nairaPrinter = message.NewPrinter(language.English)

// FormatNaira renders a major-unit amount with a currency sign and thousands
// separators, e.g. ₦35,000.
func FormatNaira(amount float64) string {
	return nairaPrinter.Sprintf("₦%d", int64(math.Round(amount)))
}
