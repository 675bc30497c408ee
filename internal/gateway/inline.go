package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrAlreadyPresented = errors.New("payment session already presented")

// InlineGateway opens payment sessions against the provider's transaction
// endpoint. It mirrors the inline client's contract: Setup validates the
// config and registers the session, Present is invoked exactly once, and the
// outcome only ever arrives through the client callback, never through the
// handler.
type InlineGateway struct {
	endpoint string
	client   *http.Client
	log      *logrus.Entry
}

func NewInlineGateway(endpoint string, timeout time.Duration, log *logrus.Logger) *InlineGateway {
	return &InlineGateway{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log.WithField("component", "gateway.inline"),
	}
}

type setupResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AccessCode       string `json:"access_code"`
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (g *InlineGateway) Setup(ctx context.Context, cfg SetupConfig) (Handler, error) {
	// The inline client rejects these before any network call; preserve the
	// same error wording so callers can classify the failure.
	if cfg.Key == "" {
		return nil, errors.New("setup: missing public key")
	}
	if cfg.Email == "" {
		return nil, errors.New("setup: missing email")
	}
	if cfg.Amount <= 0 {
		return nil, errors.New("setup: invalid amount")
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal setup config")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build setup request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Key)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "open payment session")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read setup response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("setup rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed setupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "decode setup response")
	}
	if !parsed.Status {
		return nil, errors.Errorf("setup refused: %s", parsed.Message)
	}

	g.log.WithFields(logrus.Fields{
		"reference": cfg.Reference,
		"amount":    cfg.Amount,
		"currency":  cfg.Currency,
	}).Info("payment session opened")

	return &inlineHandler{
		authorizationURL: parsed.Data.AuthorizationURL,
		accessCode:       parsed.Data.AccessCode,
		log:              g.log,
	}, nil
}

type inlineHandler struct {
	authorizationURL string
	accessCode       string
	log              *logrus.Entry

	mu        sync.Mutex
	presented bool
}

// Present marks the session's UI as handed to the user. The widget owns all
// user-facing pacing from here; the orchestrator fires and forgets.
func (h *inlineHandler) Present(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.presented {
		return ErrAlreadyPresented
	}
	h.presented = true
	h.log.WithField("access_code", h.accessCode).Info("payment UI presented")
	return nil
}

func (h *inlineHandler) AuthorizationURL() string {
	return h.authorizationURL
}
