package qbo

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

func responseFor(status int, rawURL string) *http.Response {
	u, _ := url.Parse(rawURL)
	return &http.Response{
		StatusCode: status,
		Request:    &http.Request{URL: u},
	}
}

func TestNewAPIError(t *testing.T) {
	t.Run("parses fault body", func(t *testing.T) {
		resp := responseFor(http.StatusBadRequest, "https://sandbox-quickbooks.api.intuit.com/v3/company/123/invoice")
		body := []byte(`{"Fault":{"Error":[{"Message":"Invalid Reference Id","Detail":"Invalid Reference Id : Something you're trying to use has been made inactive.","code":"2500"}],"type":"ValidationFault"}}`)

		apiErr := newAPIError(resp, body)

		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "2500", apiErr.Code)
		assert.Equal(t, "Invalid Reference Id", apiErr.Message)
		assert.Contains(t, apiErr.Detail, "made inactive")
		assert.Equal(t, "https://sandbox-quickbooks.api.intuit.com/v3/company/123/invoice", apiErr.URL)
	})

	t.Run("tolerates a non-fault body", func(t *testing.T) {
		resp := responseFor(http.StatusBadGateway, "https://quickbooks.api.intuit.com/v3/company/123/query")

		apiErr := newAPIError(resp, []byte("<html>Bad Gateway</html>"))

		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Empty(t, apiErr.Code)
		assert.Empty(t, apiErr.Message)
	})
}

func TestWrapStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{
			name:     "401 maps to credential expired",
			status:   http.StatusUnauthorized,
			sentinel: domain.ErrCredentialExpired,
		},
		{
			name:     "400 maps to validation failed",
			status:   http.StatusBadRequest,
			sentinel: domain.ErrValidationFailed,
		},
		{
			name:     "422 maps to validation failed",
			status:   http.StatusUnprocessableEntity,
			sentinel: domain.ErrValidationFailed,
		},
		{
			name:     "404 maps to not found",
			status:   http.StatusNotFound,
			sentinel: domain.ErrNotFound,
		},
		{
			name:     "429 maps to rate limited",
			status:   http.StatusTooManyRequests,
			sentinel: domain.ErrRateLimited,
		},
		{
			name:     "500 maps to remote unavailable",
			status:   http.StatusInternalServerError,
			sentinel: domain.ErrRemoteUnavailable,
		},
		{
			name:     "503 maps to remote unavailable",
			status:   http.StatusServiceUnavailable,
			sentinel: domain.ErrRemoteUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapStatus(&APIError{StatusCode: tt.status})

			assert.ErrorIs(t, err, tt.sentinel)

			// The wrapped APIError stays reachable for detail reporting.
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}

	t.Run("unmapped status passes through bare", func(t *testing.T) {
		apiErr := &APIError{StatusCode: http.StatusForbidden}

		err := wrapStatus(apiErr)

		assert.Equal(t, error(apiErr), err)
		assert.False(t, domain.IsAuthExpired(err))
		assert.False(t, domain.IsTransient(err))
	})
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "with fault code",
			err: &APIError{
				StatusCode: 400,
				Code:       "6140",
				Message:    "Duplicate Document Number Error",
				URL:        "https://sandbox-quickbooks.api.intuit.com/v3/company/123/invoice",
			},
			want: "quickbooks: API error 400 (fault code 6140): Duplicate Document Number Error (URL: https://sandbox-quickbooks.api.intuit.com/v3/company/123/invoice)",
		},
		{
			name: "without fault code",
			err: &APIError{
				StatusCode: 502,
				Message:    "Bad Gateway",
				URL:        "https://quickbooks.api.intuit.com/v3/company/123/query",
			},
			want: "quickbooks: API error 502: Bad Gateway (URL: https://quickbooks.api.intuit.com/v3/company/123/query)",
		},
		{
			name: "empty message falls back to status text",
			err: &APIError{
				StatusCode: 429,
				URL:        "https://quickbooks.api.intuit.com/v3/company/123/query",
			},
			want: "quickbooks: API error 429: Too Many Requests (URL: https://quickbooks.api.intuit.com/v3/company/123/query)",
		},
		{
			name: "detail appended when it adds information",
			err: &APIError{
				StatusCode: 400,
				Code:       "2500",
				Message:    "Invalid Reference Id",
				Detail:     "Invalid Reference Id : Customers element id 99 not found",
				URL:        "https://sandbox-quickbooks.api.intuit.com/v3/company/123/invoice",
			},
			want: "quickbooks: API error 400 (fault code 2500): Invalid Reference Id: Invalid Reference Id : Customers element id 99 not found (URL: https://sandbox-quickbooks.api.intuit.com/v3/company/123/invoice)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
