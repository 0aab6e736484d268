package qbo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

const testRealm = "9341453907612345"

func testCredential() domain.Credential {
	return domain.Credential{
		AccessToken:  "access-token-1234",
		RefreshToken: "refresh-token-5678",
		RealmID:      testRealm,
	}
}

// newTestSession binds a session to a local test server, with the proactive
// throttle opened up so tests run at full speed.
func newTestSession(t *testing.T, handler http.Handler) (driven.RemoteSession, *Factory) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	factory := NewFactoryWithBaseURL(server.URL, 0)
	factory.limiter.bucket.SetLimit(rate.Inf)
	return factory.NewSession(testCredential()), factory
}

var queryStmtRE = regexp.MustCompile(`^SELECT \* FROM (\w+) WHERE \w+ = '(.*)'$`)

// lookupHandler answers /query requests from a directory of remote records,
// entity name to queried value to remote id. Unknown values produce the
// empty QueryResponse the live service sends.
func lookupHandler(directory map[string]map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := queryStmtRE.FindStringSubmatch(r.URL.Query().Get("query"))
		if m == nil {
			http.Error(w, "malformed query", http.StatusBadRequest)
			return
		}
		entity, value := m[1], strings.ReplaceAll(m[2], "''", "'")
		w.Header().Set("Content-Type", "application/json")
		if id, ok := directory[entity][value]; ok {
			fmt.Fprintf(w, `{"QueryResponse":{%q:[{"Id":%q}]}}`, entity, id)
			return
		}
		fmt.Fprint(w, `{"QueryResponse":{}}`)
	}
}

func TestBaseURLFor(t *testing.T) {
	tests := []struct {
		name        string
		environment domain.Environment
		want        string
	}{
		{
			name:        "production",
			environment: domain.EnvironmentProduction,
			want:        productionBaseURL,
		},
		{
			name:        "sandbox",
			environment: domain.EnvironmentSandbox,
			want:        sandboxBaseURL,
		},
		{
			name:        "unknown defaults to sandbox",
			environment: domain.Environment("staging"),
			want:        sandboxBaseURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseURLFor(tt.environment))
		})
	}
}

func TestFactory_SessionsShareLimiter(t *testing.T) {
	factory := NewFactoryWithBaseURL("http://localhost:1", 0)

	first := factory.NewSession(testCredential()).(*Session)
	second := factory.NewSession(domain.Credential{AccessToken: "rotated", RealmID: testRealm}).(*Session)

	// A refreshed credential still draws on the same per-realm quota.
	assert.Same(t, factory.limiter, first.client.limiter)
	assert.Same(t, factory.limiter, second.client.limiter)
}

func TestSession_FindInvoice_Found(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer access-token-1234", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "SELECT * FROM Invoice WHERE DocNumber = '1042'", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"QueryResponse":{"Invoice":[{"Id":"145","DocNumber":"1042"}]},"time":"2026-03-01T10:15:00.000-07:00"}`)
	})
	session, _ := newTestSession(t, mux)

	handle, err := session.FindInvoice(context.Background(), "1042")

	require.NoError(t, err)
	assert.Equal(t, "145", handle.ID)
}

func TestSession_FindInvoice_NotFound(t *testing.T) {
	t.Run("entity key absent", func(t *testing.T) {
		session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"QueryResponse":{},"time":"2026-03-01T10:15:00.000-07:00"}`)
		}))

		handle, err := session.FindInvoice(context.Background(), "9999")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.True(t, handle.IsZero())
	})

	t.Run("empty row set", func(t *testing.T) {
		session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"QueryResponse":{"Invoice":[]}}`)
		}))

		handle, err := session.FindInvoice(context.Background(), "9999")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.True(t, handle.IsZero())
	})
}

func TestSession_Query_EscapesSingleQuotes(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SELECT * FROM Customer WHERE DisplayName = 'O''Brien Supplies'", r.URL.Query().Get("query"))
		fmt.Fprint(w, `{"QueryResponse":{"Customer":[{"Id":"61"}]}}`)
	}))

	handle, err := session.FindCustomer(context.Background(), "O'Brien Supplies")

	require.NoError(t, err)
	assert.Equal(t, "61", handle.ID)
}

func TestSession_FindInvoice_ExpiredCredential(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"Fault":{"Error":[{"Message":"message=AuthenticationFailed; errorCode=003200; statusCode=401","code":"3200"}],"type":"AUTHENTICATION"}}`)
	}))

	_, err := session.FindInvoice(context.Background(), "1042")

	require.Error(t, err)
	assert.True(t, domain.IsAuthExpired(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "3200", apiErr.Code)
}

func TestSession_FindInvoice_RemoteUnavailable(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := session.FindInvoice(context.Background(), "1042")

		assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
		assert.True(t, domain.IsTransient(err))
	})

	t.Run("connection failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		factory := NewFactoryWithBaseURL(server.URL, 0)
		factory.limiter.bucket.SetLimit(rate.Inf)
		session := factory.NewSession(testCredential())
		server.Close()

		_, err := session.FindInvoice(context.Background(), "1042")

		assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	})
}

func TestSession_RateLimitedResponseInstallsHold(t *testing.T) {
	session, factory := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := session.FindInvoice(context.Background(), "1042")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, domain.IsTransient(err))

	// The Retry-After header becomes a shared hold on the factory limiter.
	hold := factory.limiter.HoldUntil()
	assert.True(t, hold.After(time.Now().Add(100*time.Second)), "hold %v should reflect Retry-After", hold)
}

func TestSession_CreateInvoice_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", lookupHandler(map[string]map[string]string{
		"Customer": {"Globex Corp": "59"},
		"Item":     {"Consulting": "12", "Support Plan": "13"},
		"Term":     {"Net 30": "3"},
	}))
	mux.HandleFunc("/v3/company/"+testRealm+"/invoice", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1042", body["DocNumber"])
		assert.Equal(t, map[string]any{"value": "59"}, body["CustomerRef"])
		assert.Equal(t, map[string]any{"value": "3"}, body["SalesTermRef"])
		assert.Len(t, body["Line"], 2)

		fmt.Fprint(w, `{"Invoice":{"Id":"777","DocNumber":"1042"}}`)
	})
	session, _ := newTestSession(t, mux)

	handle, err := session.CreateInvoice(context.Background(), retainerInvoice(), domain.PayloadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "777", handle.ID)
}

func TestSession_CreateInvoice_MissingCustomer(t *testing.T) {
	creates := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", lookupHandler(nil))
	mux.HandleFunc("/v3/company/"+testRealm+"/invoice", func(http.ResponseWriter, *http.Request) {
		creates++
	})
	session, _ := newTestSession(t, mux)

	_, err := session.CreateInvoice(context.Background(), retainerInvoice(), domain.PayloadOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `customer "Globex Corp" does not exist remotely`)
	assert.Zero(t, creates, "nothing should be created for an unknown customer")
}

func TestSession_CreateInvoice_DropsUnknownItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", lookupHandler(map[string]map[string]string{
		"Customer": {"Globex Corp": "59"},
		"Item":     {"Consulting": "12"},
		"Term":     {"Net 30": "3"},
	}))
	mux.HandleFunc("/v3/company/"+testRealm+"/invoice", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// "Support Plan" resolves to nothing, so only one line survives.
		assert.Len(t, body["Line"], 1)
		fmt.Fprint(w, `{"Invoice":{"Id":"778"}}`)
	})
	session, _ := newTestSession(t, mux)

	handle, err := session.CreateInvoice(context.Background(), retainerInvoice(), domain.PayloadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "778", handle.ID)
}

func TestSession_CreateInvoice_NoValidLines(t *testing.T) {
	creates := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", lookupHandler(map[string]map[string]string{
		"Customer": {"Globex Corp": "59"},
	}))
	mux.HandleFunc("/v3/company/"+testRealm+"/invoice", func(http.ResponseWriter, *http.Request) {
		creates++
	})
	session, _ := newTestSession(t, mux)

	_, err := session.CreateInvoice(context.Background(), retainerInvoice(), domain.PayloadOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), "no valid line items")
	assert.Zero(t, creates)
}

func TestSession_CreateInvoice_MissingTermOmitted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", lookupHandler(map[string]map[string]string{
		"Customer": {"Globex Corp": "59"},
		"Item":     {"Consulting": "12", "Support Plan": "13"},
	}))
	mux.HandleFunc("/v3/company/"+testRealm+"/invoice", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasTerm := body["SalesTermRef"]
		assert.False(t, hasTerm, "an unresolvable term must be left off the payload")
		fmt.Fprint(w, `{"Invoice":{"Id":"779"}}`)
	})
	session, _ := newTestSession(t, mux)

	handle, err := session.CreateInvoice(context.Background(), retainerInvoice(), domain.PayloadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "779", handle.ID)
}

func TestSession_CreateInvoice_ValidationFault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/company/"+testRealm+"/query", lookupHandler(map[string]map[string]string{
		"Customer": {"Globex Corp": "59"},
		"Item":     {"Consulting": "12", "Support Plan": "13"},
		"Term":     {"Net 30": "3"},
	}))
	mux.HandleFunc("/v3/company/"+testRealm+"/invoice", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"Fault":{"Error":[{"Message":"Duplicate Document Number Error","Detail":"Duplicate Document Number Error : You must specify a different number.","code":"6140"}],"type":"ValidationFault"}}`)
	})
	session, _ := newTestSession(t, mux)

	_, err := session.CreateInvoice(context.Background(), retainerInvoice(), domain.PayloadOptions{})

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "6140", apiErr.Code)
	assert.Equal(t, "Duplicate Document Number Error", apiErr.Message)
	assert.Contains(t, apiErr.Detail, "You must specify a different number")
}

func TestSession_FetchInvoicePDF(t *testing.T) {
	t.Run("returns document bytes", func(t *testing.T) {
		document := []byte("%PDF-1.4 rendered invoice")
		mux := http.NewServeMux()
		mux.HandleFunc("/v3/company/"+testRealm+"/invoice/145/pdf", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/pdf")
			w.Write(document)
		})
		session, _ := newTestSession(t, mux)

		data, err := session.FetchInvoicePDF(context.Background(), domain.RemoteHandle{ID: "145"})

		require.NoError(t, err)
		assert.Equal(t, document, data)
	})

	t.Run("rejects empty handle without a request", func(t *testing.T) {
		requests := 0
		session, _ := newTestSession(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			requests++
		}))

		_, err := session.FetchInvoicePDF(context.Background(), domain.RemoteHandle{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, requests)
	})
}
