package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shittu-qudus/BLACKSFIT/internal/cart"
	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
	"github.com/shittu-qudus/BLACKSFIT/internal/gateway"
	"github.com/shittu-qudus/BLACKSFIT/internal/notify"
)

// publicKeyPrefix is the provider's convention for public credentials
// (pk_test_ / pk_live_).
const publicKeyPrefix = "pk_"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// How long the transient notification status stays visible.
const (
	emailStatusClearAfter  = 3 * time.Second
	emailFailureClearAfter = 5 * time.Second
)

// Readiness is the bootstrap query the orchestrator consults before opening
// a session.
type Readiness interface {
	State() gateway.State
}

// Notifier delivers the order confirmation and reports a transient status
// string. Its outcome never affects payment or cart state.
type Notifier interface {
	Dispatch(ctx context.Context, snap *domain.CartSnapshot, customer domain.CustomerDetails, result domain.PaymentResult) string
}

type Config struct {
	PublicKey       string
	Currency        string
	ReferencePrefix string
}

// BeginResult is returned once a payment session has been opened; the actual
// outcome arrives later through HandleCallback or HandleClose.
type BeginResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// Outcome is the user-facing result of a finished payment attempt.
type Outcome struct {
	Status      domain.CheckoutStatus `json:"status"`
	Reference   string                `json:"reference,omitempty"`
	Email       string                `json:"email,omitempty"`
	EmailStatus string                `json:"email_status,omitempty"`
	Message     string                `json:"message"`
}

type attempt struct {
	reference string
	startedAt time.Time
}

// Service orchestrates one browsing session's checkout: it validates input,
// builds the payment request from the cart, opens the gateway session and
// interprets the asynchronous result.
type Service struct {
	cfg      Config
	cart     cart.Store
	gw       gateway.Gateway
	ready    Readiness
	notifier Notifier
	log      *logrus.Entry

	mu          sync.Mutex
	status      domain.CheckoutStatus
	customer    domain.CustomerDetails
	attempt     *attempt
	emailStatus string
	statusTimer *time.Timer

	now        func() time.Time
	randSuffix func() string
}

func NewService(cfg Config, store cart.Store, gw gateway.Gateway, ready Readiness, notifier Notifier, log *logrus.Logger) *Service {
	if cfg.Currency == "" {
		cfg.Currency = cart.Currency
	}
	if cfg.ReferencePrefix == "" {
		cfg.ReferencePrefix = "blackfit"
	}
	return &Service{
		cfg:        cfg,
		cart:       store,
		gw:         gw,
		ready:      ready,
		notifier:   notifier,
		log:        log.WithField("component", "checkout"),
		status:     domain.CheckoutStatusIdle,
		now:        time.Now,
		randSuffix: defaultRandSuffix,
	}
}

// Status reports the orchestrator state and the transient notification
// status string.
func (s *Service) Status() (domain.CheckoutStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.emailStatus
}

// Begin validates the customer's details against the preconditions and, if
// they all hold, opens a payment session. From the orchestrator's point of
// view the session is fire-and-forget: the result only arrives via
// HandleCallback or HandleClose.
func (s *Service) Begin(ctx context.Context, details domain.CustomerDetails) (*BeginResult, error) {
	// One attempt at a time per session, the way the original UI's event
	// loop serialized checkout steps.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.CheckoutStatusAwaitingGateway {
		return nil, ErrCheckoutInProgress
	}
	if s.status.IsTerminal() {
		s.setStatus(domain.CheckoutStatusIdle)
	}

	s.setStatus(domain.CheckoutStatusAwaitingDetails)
	s.customer = details.Trimmed()

	s.setStatus(domain.CheckoutStatusValidating)
	if err := s.validate(); err != nil {
		s.setStatus(domain.CheckoutStatusIdle)
		return nil, err
	}

	setup := s.buildSetup()
	handler, err := s.gw.Setup(ctx, setup)
	if err != nil {
		s.setStatus(domain.CheckoutStatusIdle)
		return nil, classifySetupError(err)
	}
	if err := handler.Present(ctx); err != nil {
		s.setStatus(domain.CheckoutStatusIdle)
		return nil, classifySetupError(err)
	}

	s.attempt = &attempt{reference: setup.Reference, startedAt: s.now()}
	s.setStatus(domain.CheckoutStatusAwaitingGateway)

	s.log.WithFields(logrus.Fields{
		"reference": setup.Reference,
		"amount":    setup.Amount,
	}).Info("payment session opened, awaiting gateway result")

	return &BeginResult{Reference: setup.Reference, AuthorizationURL: handler.AuthorizationURL()}, nil
}

// validate enforces the preconditions in order, each with a distinct
// user-correctable error and no network call attempted.
func (s *Service) validate() error {
	if s.ready.State() != gateway.StateReady {
		return ErrGatewayNotReady
	}
	if !strings.HasPrefix(s.cfg.PublicKey, publicKeyPrefix) {
		return ErrInvalidPublicKey
	}
	if s.customer.Email == "" || s.customer.FirstName == "" || s.customer.LastName == "" {
		return ErrMissingDetails
	}
	if !emailPattern.MatchString(s.customer.Email) {
		return ErrInvalidEmail
	}
	if s.cart.Len() == 0 || s.cart.Total() <= 0 {
		return ErrEmptyCart
	}
	return nil
}

func (s *Service) buildSetup() gateway.SetupConfig {
	total := s.cart.Total()
	lines, err := json.Marshal(s.cart.Lines())
	if err != nil {
		lines = []byte("[]")
	}

	address := s.customer.Address
	if address == "" {
		address = "Not provided"
	}

	return gateway.SetupConfig{
		Key:       s.cfg.PublicKey,
		Email:     s.customer.Email,
		Amount:    MinorUnits(total),
		Currency:  s.cfg.Currency,
		Reference: s.newReference(),
		FirstName: s.customer.FirstName,
		LastName:  s.customer.LastName,
		Phone:     s.customer.Phone,
		Metadata: gateway.Metadata{CustomFields: []gateway.CustomField{
			{DisplayName: "Address", VariableName: "address", Value: address},
			{DisplayName: "Cart Items", VariableName: "cart_items", Value: string(lines)},
			{DisplayName: "Order Total", VariableName: "order_total", Value: strconv.FormatFloat(total, 'f', -1, 64)},
		}},
	}
}

// newReference derives a per-attempt reference from a timestamp plus a
// random suffix. Uniqueness is probabilistic, not guaranteed.
func (s *Service) newReference() string {
	return fmt.Sprintf("%s_%d_%s", s.cfg.ReferencePrefix, s.now().UnixMilli(), s.randSuffix())
}

func defaultRandSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// MinorUnits converts a major-unit amount to the gateway's integer minor
// units (kobo), rounding rather than truncating so amounts are never
// systematically undercharged.
func MinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// HandleCallback interprets the gateway's asynchronous result. A confirmed
// charge runs the post-success sequence; anything else is a normal terminal
// state that leaves the cart untouched.
func (s *Service) HandleCallback(ctx context.Context, result domain.PaymentResult) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.CheckoutStatusAwaitingGateway || s.attempt == nil {
		return nil, ErrNoPaymentInFlight
	}
	if result.Reference != "" && result.Reference != s.attempt.reference {
		return nil, ErrReferenceMismatch
	}

	if !result.Succeeded() {
		s.setStatus(domain.CheckoutStatusFailed)
		s.attempt = nil
		s.log.WithFields(logrus.Fields{
			"reference": result.Reference,
			"status":    result.Status,
		}).Warn("payment not confirmed")
		return &Outcome{
			Status:    domain.CheckoutStatusFailed,
			Reference: result.Reference,
			Message:   fmt.Sprintf("Payment status: %s. Please contact support if you were charged.", result.Status),
		}, nil
	}

	return s.completeOrder(ctx, result), nil
}

// completeOrder runs the post-success sequence. The charge is already final
// here, so this is the one place where fail-safe outranks fail-fast: the
// cart is cleared and the user sees an acknowledgment with the reference no
// matter what the notification path does.
func (s *Service) completeOrder(ctx context.Context, result domain.PaymentResult) (out *Outcome) {
	s.setStatus(domain.CheckoutStatusSucceeded)

	// Snapshot before anything else. The handler owns this immutable copy of
	// cart+customer state for the rest of the flow; the live cart stays
	// mutable underneath it.
	snap := s.cart.Snapshot()
	customer := s.customer
	email := customer.Email

	defer func() {
		s.cart.Clear()
		s.customer = domain.CustomerDetails{}
		s.attempt = nil
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"reference": result.Reference,
				"panic":     r,
			}).Error("post-payment sequence panicked")
			out = &Outcome{
				Status:    domain.CheckoutStatusSucceeded,
				Reference: result.Reference,
				Email:     email,
				Message:   fmt.Sprintf("Payment successful but there was an error processing your order. Please contact support with reference: %s", result.Reference),
			}
		}
	}()

	emailStatus := s.notifier.Dispatch(ctx, snap, customer, result)
	s.setEmailStatus(emailStatus)

	s.log.WithFields(logrus.Fields{
		"reference":    result.Reference,
		"email_status": emailStatus,
	}).Info("order completed")

	return &Outcome{
		Status:      domain.CheckoutStatusSucceeded,
		Reference:   result.Reference,
		Email:       email,
		EmailStatus: emailStatus,
		Message:     fmt.Sprintf("Payment successful! Reference: %s. A confirmation email has been sent to %s", result.Reference, email),
	}
}

// HandleClose is the user dismissing the gateway UI without a result: not a
// failure, no notification, cart untouched, silent return to Idle.
func (s *Service) HandleClose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.CheckoutStatusAwaitingGateway {
		return ErrNoPaymentInFlight
	}
	s.attempt = nil
	s.setStatus(domain.CheckoutStatusCancelled)
	s.setStatus(domain.CheckoutStatusIdle)
	s.log.Info("payment dialog closed by user")
	return nil
}

func (s *Service) setStatus(to domain.CheckoutStatus) {
	if !domain.CanTransitionTo(s.status, to) {
		s.log.WithFields(logrus.Fields{"from": s.status, "to": to}).Warn("illegal checkout transition")
		return
	}
	s.status = to
}

// setEmailStatus records the transient notification status and schedules its
// automatic clearing. Callers must hold the lock.
func (s *Service) setEmailStatus(status string) {
	s.emailStatus = status
	delay := emailFailureClearAfter
	if status == notify.StatusSent || status == notify.StatusSentFallback {
		delay = emailStatusClearAfter
	}
	if s.statusTimer != nil {
		s.statusTimer.Stop()
	}
	s.statusTimer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.emailStatus = ""
	})
}
