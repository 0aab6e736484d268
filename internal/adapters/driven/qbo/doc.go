// Package qbo implements the QuickBooks Online wire adapter.
//
// It provides the driven-side implementations for talking to QBO:
//
//   - Factory/Session: [driven.SessionFactory] and [driven.RemoteSession],
//     entity lookup via the query endpoint, invoice create, and PDF fetch
//   - Refresher: [driven.TokenRefresher], one OAuth2 refresh grant per call
//   - Client: HTTP plumbing with bearer auth and rate limiting
//
// # Authentication
//
// Sessions authenticate with a short-lived bearer token; the adapter never
// renews tokens on its own. Renewal runs through the Refresher against the
// Intuit token endpoint, with the application's client id and secret sent
// as HTTP Basic auth. Who refreshes, when, and how often is decided by the
// caller.
//
// # Endpoints
//
// All company data lives under /v3/company/{realmId}. Lookups use the query
// endpoint with exact-match statements (single quotes in values doubled);
// invoice creation posts to /invoice; rendered documents come from
// /invoice/{id}/pdf with Accept: application/pdf.
//
// # Rate Limiting
//
// QBO allows 500 requests per minute per realm. The adapter throttles
// proactively with a token bucket well under that, and absorbs Retry-After
// from 429 responses into a shared hold so concurrent callers back off
// together.
//
// # Error Mapping
//
// Non-2xx responses become an [APIError] carrying the parsed Fault body,
// wrapped in the matching domain sentinel: 401 credential expiry, 400/422
// validation, 404 not found, 429 rate limited, 5xx and transport failures
// remote unavailable. Callers branch with errors.Is and never inspect HTTP
// status codes.
package qbo
