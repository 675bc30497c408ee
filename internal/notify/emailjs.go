package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

const (
	sendPath     = "/api/v1.0/email/send"
	sendFormPath = "/api/v1.0/email/send-form"
)

// EmailJSClient implements Client against an EmailJS-compatible HTTP API.
// A circuit breaker guards both transports: once the service is persistently
// down, later checkouts fail fast instead of stalling the success path.
type EmailJSClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
}

func NewEmailJSClient(baseURL string, timeout time.Duration) *EmailJSClient {
	settings := gobreaker.Settings{
		Name:    "emailjs",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// API-level rejections are the caller's problem to classify;
			// only transport faults should trip the breaker.
			var apiErr *APIError
			return err == nil || errors.As(err, &apiErr)
		},
	}
	return &EmailJSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*Response](settings),
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *EmailJSClient) Send(ctx context.Context, serviceID, templateID string, params map[string]string, userID string) (*Response, error) {
	return c.breaker.Execute(func() (*Response, error) {
		payload, err := json.Marshal(sendRequest{
			ServiceID:      serviceID,
			TemplateID:     templateID,
			UserID:         userID,
			TemplateParams: params,
		})
		if err != nil {
			return nil, errors.Wrap(err, "marshal send request")
		}
		return c.post(ctx, sendPath, "application/json", bytes.NewReader(payload))
	})
}

func (c *EmailJSClient) SendForm(ctx context.Context, serviceID, templateID string, form url.Values, userID string) (*Response, error) {
	return c.breaker.Execute(func() (*Response, error) {
		// The form transport carries the identifiers as fields alongside the
		// template data, matching the service's alternate convention.
		merged := url.Values{}
		for k, vs := range form {
			merged[k] = vs
		}
		merged.Set("service_id", serviceID)
		merged.Set("template_id", templateID)
		merged.Set("user_id", userID)
		return c.post(ctx, sendFormPath, "application/x-www-form-urlencoded", strings.NewReader(merged.Encode()))
	})
}

func (c *EmailJSClient) post(ctx context.Context, path, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "submit notification")
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, errors.Wrap(err, "read notification response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Text: strings.TrimSpace(string(text))}
	}
	return &Response{Status: resp.StatusCode, Text: strings.TrimSpace(string(text))}, nil
}
