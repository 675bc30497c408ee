package gateway

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// State is the bootstrap lifecycle of the external payment client.
type State string

const (
	StateNotStarted State = "not_started"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

var (
	ErrScriptUnavailable = errors.New("payment client script unavailable")
	ErrEntryPointMissing = errors.New("payment client entry point missing after load")
)

const (
	// defaultEntryPoint is the marker the fetched client script must expose
	// before the gateway may be invoked.
	defaultEntryPoint = "PaystackPop"

	// defaultGraceDelay guards against the load signal firing before the
	// entry point is actually attached.
	defaultGraceDelay = 100 * time.Millisecond

	maxScriptBytes = 1 << 20
)

// Bootstrap answers "is the payment client ready to be invoked" exactly once
// per session. State moves NotStarted -> Loading -> Ready or Failed; Ready is
// set once and never reset except by Close.
type Bootstrap struct {
	scriptURL  string
	entryPoint string
	graceDelay time.Duration
	client     *http.Client
	log        *logrus.Entry

	mu      sync.Mutex
	state   State
	loadErr error
	cancel  context.CancelFunc

	sfg singleflight.Group
}

func NewBootstrap(scriptURL string, timeout time.Duration, log *logrus.Logger) *Bootstrap {
	return &Bootstrap{
		scriptURL:  scriptURL,
		entryPoint: defaultEntryPoint,
		graceDelay: defaultGraceDelay,
		client:     &http.Client{Timeout: timeout},
		log:        log.WithField("component", "gateway.bootstrap"),
		state:      StateNotStarted,
	}
}

func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Ensure triggers the client load on first need and reports the outcome.
// Concurrent callers collapse into a single load. Once Failed, Ensure keeps
// returning the load error; only Close resets the state machine.
func (b *Bootstrap) Ensure(ctx context.Context) error {
	if b.State() == StateReady {
		return nil
	}
	_, err, _ := b.sfg.Do("load", func() (interface{}, error) {
		return nil, b.load(ctx)
	})
	return err
}

func (b *Bootstrap) load(ctx context.Context) error {
	b.mu.Lock()
	switch b.state {
	case StateReady:
		b.mu.Unlock()
		return nil
	case StateFailed:
		err := b.loadErr
		b.mu.Unlock()
		return err
	}
	b.state = StateLoading
	lctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	b.log.WithField("url", b.scriptURL).Info("loading payment client script")

	body, err := b.fetchScript(lctx)
	if err != nil {
		if lctx.Err() != nil {
			return b.abandon(lctx.Err())
		}
		return b.fail(errors.Wrapf(ErrScriptUnavailable, "fetch script: %v", err))
	}

	if !strings.Contains(body, b.entryPoint) {
		// The resource loaded but the entry point is not attached yet. Give
		// it one grace re-check before declaring failure.
		select {
		case <-time.After(b.graceDelay):
		case <-lctx.Done():
			return b.abandon(lctx.Err())
		}
		body, err = b.fetchScript(lctx)
		if err != nil {
			if lctx.Err() != nil {
				return b.abandon(lctx.Err())
			}
			return b.fail(errors.Wrapf(ErrScriptUnavailable, "grace re-fetch: %v", err))
		}
		if !strings.Contains(body, b.entryPoint) {
			return b.fail(errors.Wrapf(ErrEntryPointMissing, "no %q in script body", b.entryPoint))
		}
	}

	b.mu.Lock()
	b.state = StateReady
	b.cancel = nil
	b.mu.Unlock()
	b.log.Info("payment client ready")
	return nil
}

func (b *Bootstrap) fetchScript(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.scriptURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (b *Bootstrap) fail(err error) error {
	b.mu.Lock()
	b.state = StateFailed
	b.loadErr = err
	b.cancel = nil
	b.mu.Unlock()
	b.log.WithError(err).Error("payment client load failed")
	return err
}

// abandon handles a load cancelled by teardown: the attempt did not fail, it
// just never finished, so a re-bootstrap starts from scratch.
func (b *Bootstrap) abandon(err error) error {
	b.mu.Lock()
	if b.state == StateLoading {
		b.state = StateNotStarted
	}
	b.cancel = nil
	b.mu.Unlock()
	return err
}

// Close tears the bootstrap down: a pending load is abandoned and the state
// returns to NotStarted so a later re-bootstrap is idempotent.
func (b *Bootstrap) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.state = StateNotStarted
	b.loadErr = nil
}
