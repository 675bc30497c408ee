package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shittu-qudus/BLACKSFIT/internal/cart"
	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
	"github.com/shittu-qudus/BLACKSFIT/internal/gateway"
	"github.com/shittu-qudus/BLACKSFIT/internal/notify"
)

var (
	capATL = domain.Product{ID: 1, Name: "ATL", PhotoURL: "/image/ATL.jpeg", Size: 42, Price: 35000}
	capEyo = domain.Product{ID: 5, Name: "eyo", PhotoURL: "/image/eyo.jpeg", Size: 44, Price: 35000}

	validDetails = domain.CustomerDetails{
		Email:     "ade@example.com",
		FirstName: "Ade",
		LastName:  "Bello",
		Phone:     "08012345678",
		Address:   "12 Marina Road, Lagos",
	}
)

func newTestService(store cart.Store, gw gateway.Gateway, state gateway.State, n Notifier) *Service {
	return NewService(Config{PublicKey: "pk_test_abc123"}, store, gw, stubReadiness{state: state}, n, testLogger())
}

func TestBegin_RefusedWhenGatewayNotReady(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateLoading, &mockNotifier{})

	_, err := svc.Begin(context.Background(), validDetails)

	require.ErrorIs(t, err, ErrGatewayNotReady)
	assert.Empty(t, gw.setupCalls, "no gateway call may be attempted")

	st, _ := svc.Status()
	assert.Equal(t, domain.CheckoutStatusIdle, st)
}

func TestBegin_RefusedWithMalformedPublicKey(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := NewService(Config{PublicKey: "sk_live_wrong"}, store, gw, stubReadiness{state: gateway.StateReady}, &mockNotifier{}, testLogger())

	_, err := svc.Begin(context.Background(), validDetails)

	require.ErrorIs(t, err, ErrInvalidPublicKey)
	assert.Empty(t, gw.setupCalls)
}

func TestBegin_RefusedWithMissingDetails(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

	details := validDetails
	details.LastName = "   "
	_, err := svc.Begin(context.Background(), details)

	require.ErrorIs(t, err, ErrMissingDetails)
	assert.Empty(t, gw.setupCalls)
}

func TestBegin_RefusedWithMalformedEmail(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

	details := validDetails
	details.Email = "not-an-email"
	_, err := svc.Begin(context.Background(), details)

	require.ErrorIs(t, err, ErrInvalidEmail)
	assert.Empty(t, gw.setupCalls)
}

func TestBegin_RefusedWithEmptyCart(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(cart.NewMemoryStore(), gw, gateway.StateReady, &mockNotifier{})

	_, err := svc.Begin(context.Background(), validDetails)

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, gw.setupCalls)
}

func TestBegin_BuildsMinorUnitRequest(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(domain.Product{ID: 9, Name: "map", Price: 75000})
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

	res, err := svc.Begin(context.Background(), validDetails)

	require.NoError(t, err)
	require.Len(t, gw.setupCalls, 1)
	setup := gw.setupCalls[0]

	assert.Equal(t, int64(7500000), setup.Amount, "75,000 naira is exactly 7,500,000 kobo")
	assert.Equal(t, "NGN", setup.Currency)
	assert.Equal(t, "pk_test_abc123", setup.Key)
	assert.Equal(t, "ade@example.com", setup.Email)
	assert.Equal(t, "Ade", setup.FirstName)
	assert.Equal(t, "Bello", setup.LastName)
	assert.Equal(t, res.Reference, setup.Reference)
	assert.True(t, strings.HasPrefix(setup.Reference, "blackfit_"))

	require.Len(t, setup.Metadata.CustomFields, 3)
	assert.Equal(t, "address", setup.Metadata.CustomFields[0].VariableName)
	assert.Equal(t, "12 Marina Road, Lagos", setup.Metadata.CustomFields[0].Value)
	assert.Contains(t, setup.Metadata.CustomFields[1].Value, `"product_id":9`)
	assert.Equal(t, "75000", setup.Metadata.CustomFields[2].Value)

	assert.Equal(t, 1, gw.handler.presentCalls, "present UI is invoked exactly once")
}

func TestBegin_TrimsCustomerInput(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

	details := domain.CustomerDetails{
		Email:     "  ade@example.com  ",
		FirstName: " Ade ",
		LastName:  " Bello ",
	}
	_, err := svc.Begin(context.Background(), details)

	require.NoError(t, err)
	require.Len(t, gw.setupCalls, 1)
	assert.Equal(t, "ade@example.com", gw.setupCalls[0].Email)
	assert.Equal(t, "Ade", gw.setupCalls[0].FirstName)
	assert.Equal(t, "Bello", gw.setupCalls[0].LastName)
}

func TestBegin_DistinctReferencesAcrossAttempts(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

	first, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)
	require.NoError(t, svc.HandleClose())

	gw.handler = nil // a fresh handler for the second session
	second, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	assert.NotEqual(t, first.Reference, second.Reference)
}

func TestBegin_RefusedWhileAwaitingGatewayResult(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

	_, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	_, err = svc.Begin(context.Background(), validDetails)
	require.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Len(t, gw.setupCalls, 1)
}

func TestBegin_SetupErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name     string
		setupErr error
		want     string
	}{
		{"amount hint", errors.New("setup: invalid amount"), "Invalid payment amount"},
		{"email hint", errors.New("setup: missing email"), "Invalid email address format"},
		{"key hint", errors.New("setup: missing public key"), "Payment configuration error"},
		{"generic", errors.New("connection reset"), "Payment initialization failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := cart.NewMemoryStore()
			store.Add(capATL)
			gw := &mockGateway{setupErr: tc.setupErr}
			svc := newTestService(store, gw, gateway.StateReady, &mockNotifier{})

			_, err := svc.Begin(context.Background(), validDetails)

			var setupErr *SetupError
			require.ErrorAs(t, err, &setupErr)
			assert.Contains(t, setupErr.Message, tc.want)
			assert.ErrorIs(t, err, tc.setupErr)

			st, _ := svc.Status()
			assert.Equal(t, domain.CheckoutStatusIdle, st, "orchestrator returns to Idle without a session")
		})
	}
}

func TestHandleCallback_SuccessClearsCartAndUsesSnapshot(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(domain.Product{ID: 3, Name: "black", Price: 40000})
	store.Increment(3) // qty 2, total 80,000

	gw := &mockGateway{}
	notifier := &mockNotifier{
		// The cart stays mutable while notification is in flight; the
		// dispatched snapshot must not observe this.
		onDispatch: func() {
			store.Add(capEyo)
			store.Increment(3)
		},
	}
	svc := newTestService(store, gw, gateway.StateReady, notifier)

	res, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	outcome, err := svc.HandleCallback(context.Background(), domain.PaymentResult{
		Reference: res.Reference,
		Status:    "success",
	})
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1, "notification dispatched exactly once")
	snap := notifier.calls[0].snap
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int32(2), snap.Items[0].Quantity)
	assert.Equal(t, float64(40000), snap.Items[0].UnitPrice)
	assert.Equal(t, float64(80000), snap.TotalAmount)
	assert.Equal(t, "ade@example.com", notifier.calls[0].customer.Email)

	assert.Equal(t, 0, store.Len(), "cart cleared after confirmed payment")
	assert.Zero(t, svc.customer, "customer details reset after a successful order")

	assert.Equal(t, domain.CheckoutStatusSucceeded, outcome.Status)
	assert.Equal(t, res.Reference, outcome.Reference)
	assert.Contains(t, outcome.Message, res.Reference)
	assert.Contains(t, outcome.Message, "ade@example.com")
	assert.Equal(t, notify.StatusSent, outcome.EmailStatus)
}

func TestHandleCallback_NotificationFailureStillClearsCart(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	notifier := &mockNotifier{status: notify.StatusBothFailed}
	svc := newTestService(store, gw, gateway.StateReady, notifier)

	res, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	outcome, err := svc.HandleCallback(context.Background(), domain.PaymentResult{
		Reference: res.Reference,
		Status:    "success",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, store.Len(), "the charge already happened, cart must clear")
	assert.Equal(t, notify.StatusBothFailed, outcome.EmailStatus)
	assert.Equal(t, domain.CheckoutStatusSucceeded, outcome.Status)
}

func TestHandleCallback_NonSuccessLeavesCartUntouched(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	store.Add(capEyo)
	gw := &mockGateway{}
	notifier := &mockNotifier{}
	svc := newTestService(store, gw, gateway.StateReady, notifier)

	res, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	outcome, err := svc.HandleCallback(context.Background(), domain.PaymentResult{
		Reference: res.Reference,
		Status:    "failed",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len(), "failed payment must not clear the cart")
	assert.Empty(t, notifier.calls, "no notification for a failed payment")
	assert.Equal(t, domain.CheckoutStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Message, "failed")
	assert.Contains(t, outcome.Message, "contact support")
}

func TestHandleCallback_WithoutPendingAttempt(t *testing.T) {
	svc := newTestService(cart.NewMemoryStore(), &mockGateway{}, gateway.StateReady, &mockNotifier{})

	_, err := svc.HandleCallback(context.Background(), domain.PaymentResult{Reference: "x", Status: "success"})

	require.ErrorIs(t, err, ErrNoPaymentInFlight)
}

func TestHandleCallback_ReferenceMismatch(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	notifier := &mockNotifier{}
	svc := newTestService(store, &mockGateway{}, gateway.StateReady, notifier)

	_, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), domain.PaymentResult{Reference: "stale_ref", Status: "success"})

	require.ErrorIs(t, err, ErrReferenceMismatch)
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, notifier.calls)
}

func TestHandleCallback_NotifierPanicStillAcknowledgesOrder(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	gw := &mockGateway{}
	notifier := &mockNotifier{panicMsg: "emailjs exploded"}
	svc := newTestService(store, gw, gateway.StateReady, notifier)

	res, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	outcome, err := svc.HandleCallback(context.Background(), domain.PaymentResult{
		Reference: res.Reference,
		Status:    "success",
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, domain.CheckoutStatusSucceeded, outcome.Status)
	assert.Contains(t, outcome.Message, "contact support with reference")
	assert.Contains(t, outcome.Message, res.Reference)
	assert.Equal(t, 0, store.Len(), "cart still cleared, the charge is final")
}

func TestHandleClose_SilentReturnToIdle(t *testing.T) {
	store := cart.NewMemoryStore()
	store.Add(capATL)
	notifier := &mockNotifier{}
	svc := newTestService(store, &mockGateway{}, gateway.StateReady, notifier)

	_, err := svc.Begin(context.Background(), validDetails)
	require.NoError(t, err)

	require.NoError(t, svc.HandleClose())

	st, _ := svc.Status()
	assert.Equal(t, domain.CheckoutStatusIdle, st)
	assert.Equal(t, 1, store.Len(), "dismissing the dialog leaves the cart alone")
	assert.Empty(t, notifier.calls)
}

func TestHandleClose_WithoutPendingAttempt(t *testing.T) {
	svc := newTestService(cart.NewMemoryStore(), &mockGateway{}, gateway.StateReady, &mockNotifier{})

	require.ErrorIs(t, svc.HandleClose(), ErrNoPaymentInFlight)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(7500000), MinorUnits(75000))
	assert.Equal(t, int64(1), MinorUnits(0.01))
	assert.Equal(t, int64(13), MinorUnits(0.125), "rounds, never truncates")
	assert.Equal(t, int64(0), MinorUnits(0))
}
