package driven

import (
	"context"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// TokenRefresher exchanges a refresh token for a fresh token pair.
// One call performs exactly one grant attempt; retry policy lives with the
// caller, and in a batch run the answer is always "never retry".
type TokenRefresher interface {
	// Refresh performs the grant and returns the replacement credential.
	// The realm identifier carries over from the input credential.
	// A rejected or failed grant wraps domain.ErrTokenRefreshFailed.
	Refresh(ctx context.Context, cred domain.Credential) (domain.Credential, error)
}
