package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// A negative remote lookup is a normal result, not a fault.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists remotely.
	// Creation must not proceed for a document number that resolves.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Authentication errors.

	// ErrCredentialExpired indicates the remote rejected the bearer token.
	// Recoverable exactly once per batch via a refresh grant.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrTokenRefreshFailed indicates the refresh grant itself failed.
	// Terminal for the whole batch; the refresh is never retried.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Remote service errors.

	// ErrValidationFailed indicates the remote rejected the entity payload.
	// Terminal for a single record; the batch continues.
	ErrValidationFailed = errors.New("validation failed")

	// ErrRateLimited indicates the API throttle limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRemoteUnavailable indicates a transport failure or remote 5xx.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)

// IsAuthExpired checks if the error carries the credential expiry signal.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrCredentialExpired)
}

// IsRefreshFailure checks if the error marks a definitive refresh failure.
func IsRefreshFailure(err error) bool {
	return errors.Is(err, ErrTokenRefreshFailed)
}

// IsValidation checks if the error is a remote payload rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsTransient checks if the error is transient (throttling, network, 5xx).
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrRemoteUnavailable)
}
