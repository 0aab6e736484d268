package qbo

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// APIError represents a QuickBooks Online API error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
	URL        string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" && e.Detail != msg {
		msg = msg + ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("quickbooks: API error %d (fault code %s): %s (URL: %s)", e.StatusCode, e.Code, msg, e.URL)
	}
	return fmt.Sprintf("quickbooks: API error %d: %s (URL: %s)", e.StatusCode, msg, e.URL)
}

// faultEnvelope is the QBO error body shape.
type faultEnvelope struct {
	Fault struct {
		Type  string `json:"type"`
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
	} `json:"Fault"`
}

// newAPIError builds an APIError from a non-2xx response, pulling the first
// Fault entry out of the body when one is present.
func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.URL = resp.Request.URL.String()
	}

	var fault faultEnvelope
	if err := json.Unmarshal(body, &fault); err == nil && len(fault.Fault.Error) > 0 {
		first := fault.Fault.Error[0]
		apiErr.Code = first.Code
		apiErr.Message = first.Message
		apiErr.Detail = first.Detail
	}
	return apiErr
}

// wrapStatus tags an APIError with the domain sentinel for its status code,
// so callers can use errors.Is without knowing HTTP.
func wrapStatus(apiErr *APIError) error {
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrCredentialExpired, apiErr)
	case apiErr.StatusCode == http.StatusBadRequest,
		apiErr.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", domain.ErrValidationFailed, apiErr)
	case apiErr.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, apiErr)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, apiErr)
	default:
		return apiErr
	}
}
