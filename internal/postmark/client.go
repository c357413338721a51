package postmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fakturo/invoice-mailer/internal/config"
)

// Client is a Postmark API client.
//
// Domain management calls authenticate with the account-level token,
// sending with the server token. No retries are performed; a failed
// call is surfaced once and the caller decides what to do.
type Client struct {
	baseURL      string
	serverToken  string
	accountToken string
	httpClient   *http.Client
}

// NewClient creates a new Postmark API client.
func NewClient(cfg config.PostmarkConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		serverToken:  cfg.ServerToken,
		accountToken: cfg.AccountToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// doRequest makes an HTTP request to the Postmark API and decodes the
// response into out (when out is non-nil).
func (c *Client) doRequest(ctx context.Context, method, path, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token == c.serverToken {
		req.Header.Set("X-Postmark-Server-Token", token)
	} else {
		req.Header.Set("X-Postmark-Account-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}

// CreateDomain registers a sending domain. The returned domain carries
// the two proof records the owner must publish, both unverified.
func (c *Client) CreateDomain(ctx context.Context, name string) (*Domain, error) {
	payload := map[string]string{"Name": name}

	var domain Domain
	if err := c.doRequest(ctx, http.MethodPost, "/domains", c.accountToken, payload, &domain); err != nil {
		return nil, err
	}
	return &domain, nil
}

// VerifyDomain triggers a provider-side re-check of both proof records
// and returns the updated domain state. Postmark exposes DKIM and
// Return-Path verification as separate calls; both are run, first hard
// failure aborts.
func (c *Client) VerifyDomain(ctx context.Context, id int64) (*Domain, error) {
	var domain Domain
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/domains/%d/verifyDkim", id), c.accountToken, nil, &domain); err != nil {
		return nil, err
	}
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/domains/%d/verifyReturnPath", id), c.accountToken, nil, &domain); err != nil {
		return nil, err
	}
	return &domain, nil
}

// DeleteDomain removes a domain registration.
func (c *Client) DeleteDomain(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/domains/%d", id), c.accountToken, nil, nil)
}

// SendEmail dispatches a single email.
func (c *Client) SendEmail(ctx context.Context, msg Message) error {
	return c.doRequest(ctx, http.MethodPost, "/email", c.serverToken, msg, nil)
}
