package checkout

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shittu-qudus/BLACKSFIT/internal/domain"
	"github.com/shittu-qudus/BLACKSFIT/internal/gateway"
	"github.com/shittu-qudus/BLACKSFIT/internal/notify"
)

// stubReadiness implements Readiness for testing
type stubReadiness struct {
	state gateway.State
}

func (s stubReadiness) State() gateway.State {
	return s.state
}

type mockHandler struct {
	authURL      string
	presentErr   error
	presentCalls int
}

func (m *mockHandler) Present(context.Context) error {
	m.presentCalls++
	return m.presentErr
}

func (m *mockHandler) AuthorizationURL() string {
	return m.authURL
}

// mockGateway implements gateway.Gateway and captures every SetupConfig it
// receives.
type mockGateway struct {
	mu         sync.Mutex
	setupErr   error
	handler    *mockHandler
	setupCalls []gateway.SetupConfig
}

func (m *mockGateway) Setup(_ context.Context, cfg gateway.SetupConfig) (gateway.Handler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setupCalls = append(m.setupCalls, cfg)
	if m.setupErr != nil {
		return nil, m.setupErr
	}
	if m.handler == nil {
		m.handler = &mockHandler{authURL: "https://checkout.example/session"}
	}
	return m.handler, nil
}

type notifierCall struct {
	snap     *domain.CartSnapshot
	customer domain.CustomerDetails
	result   domain.PaymentResult
}

// mockNotifier implements Notifier. onDispatch runs after the call is
// recorded, which lets tests mutate the cart mid-notification.
type mockNotifier struct {
	status     string
	panicMsg   string
	onDispatch func()
	calls      []notifierCall
}

func (m *mockNotifier) Dispatch(_ context.Context, snap *domain.CartSnapshot, customer domain.CustomerDetails, result domain.PaymentResult) string {
	m.calls = append(m.calls, notifierCall{snap: snap, customer: customer, result: result})
	if m.onDispatch != nil {
		m.onDispatch()
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.status == "" {
		return notify.StatusSent
	}
	return m.status
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
