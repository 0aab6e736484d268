package services

import (
	"context"
	"fmt"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// AuthRefresher renews the remote credential and rebuilds the session.
//
// One call performs at most one refresh grant. Any failure along the way
// (grant rejected, credential not persisted, operator declined) is definitive:
// the caller must not invoke Refresh again for the same expiry.
type AuthRefresher struct {
	store     driven.CredentialStore
	refresher driven.TokenRefresher
	factory   driven.SessionFactory
	confirmer driven.Confirmer
}

// NewAuthRefresher creates a new auth refresher.
// The confirmer is optional - if nil, runs continue immediately after the
// credential file is rewritten.
func NewAuthRefresher(
	store driven.CredentialStore,
	refresher driven.TokenRefresher,
	factory driven.SessionFactory,
	confirmer driven.Confirmer,
) *AuthRefresher {
	return &AuthRefresher{
		store:     store,
		refresher: refresher,
		factory:   factory,
		confirmer: confirmer,
	}
}

// Refresh exchanges the refresh token, persists the new credential, and
// returns a session bound to it.
//
// The new credential is durable on disk before the session is handed out:
// a retried operation must never run on a token that only exists in memory.
func (r *AuthRefresher) Refresh(ctx context.Context, cred domain.Credential) (driven.RemoteSession, domain.Credential, error) {
	if !cred.HasRefreshToken() {
		return nil, cred, fmt.Errorf("%w: no refresh token stored", domain.ErrTokenRefreshFailed)
	}

	logger.Info("Refreshing expired credential for realm %s", cred.RealmID)

	// 1. Perform the grant, exactly once
	fresh, err := r.refresher.Refresh(ctx, cred)
	if err != nil {
		if domain.IsRefreshFailure(err) {
			return nil, cred, err
		}
		return nil, cred, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	// 2. Persist before use
	if err := r.store.Save(ctx, fresh); err != nil {
		return nil, cred, fmt.Errorf("%w: persist credential: %w", domain.ErrTokenRefreshFailed, err)
	}
	logger.Info("Credential refreshed and saved to %s", r.store.Path())

	// 3. Let the operator mirror the credential file if configured
	if r.confirmer != nil {
		msg := fmt.Sprintf("Credential file updated at %s. Mirror it to your shared location now if required.", r.store.Path())
		if err := r.confirmer.Confirm(ctx, msg); err != nil {
			return nil, fresh, fmt.Errorf("confirm credential update: %w", err)
		}
	}

	// 4. Rebuild the session from the fresh credential
	return r.factory.NewSession(fresh), fresh, nil
}
