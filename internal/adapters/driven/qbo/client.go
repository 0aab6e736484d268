package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	sandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionBaseURL = "https://quickbooks.api.intuit.com"
)

// BaseURLFor returns the API endpoint for an environment.
func BaseURLFor(environment domain.Environment) string {
	if environment == domain.EnvironmentProduction {
		return productionBaseURL
	}
	return sandboxBaseURL
}

// Client handles QBO API communication for one credential. All requests
// carry the bearer token and pass through the shared rate limiter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	realmID     string
	limiter     *RateLimiter
}

// NewClient creates a QBO API client. A nil limiter gets a private one;
// sessions that share a quota should share a limiter.
func NewClient(cred domain.Credential, baseURL string, timeout time.Duration, limiter *RateLimiter) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if limiter == nil {
		limiter = NewRateLimiter()
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: cred.AccessToken,
		realmID:     cred.RealmID,
		limiter:     limiter,
	}
}

// companyURL builds a /v3/company/{realm} endpoint URL.
func (c *Client) companyURL(path string, query url.Values) string {
	u := c.baseURL + "/v3/company/" + url.PathEscape(c.realmID) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get performs a GET against a company endpoint. An empty accept defaults
// to JSON.
func (c *Client) get(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.companyURL(path, query), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.do(ctx, req)
}

// post performs a JSON POST against a company endpoint.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.companyURL(path, nil), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, req)
}

// do executes the request with auth and rate limiting, and maps non-2xx
// responses onto the domain error taxonomy.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrRemoteUnavailable, err)
	}

	c.limiter.AbsorbRetryAfter(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, wrapStatus(newAPIError(resp, body))
	}
	return body, nil
}
