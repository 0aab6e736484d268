package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService inspects and renews the stored credential.
type AuthService struct {
	store       driven.CredentialStore
	refresher   *AuthRefresher
	environment domain.Environment
}

// NewAuthService creates a new auth service.
func NewAuthService(store driven.CredentialStore, refresher *AuthRefresher, environment domain.Environment) *AuthService {
	return &AuthService{
		store:       store,
		refresher:   refresher,
		environment: environment,
	}
}

// Status reports the stored credential without exposing token values.
func (s *AuthService) Status(ctx context.Context) (*driving.AuthStatus, error) {
	status := &driving.AuthStatus{
		CredentialPath: s.store.Path(),
		Environment:    s.environment.String(),
	}

	cred, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	status.HasCredential = true
	status.RealmID = cred.RealmID
	status.AccessToken = cred.MaskedAccessToken()
	status.RefreshToken = cred.MaskedRefreshToken()
	return status, nil
}

// Refresh performs one refresh grant and reports the new credential.
// The credential is on disk before this returns; the grant is never retried.
func (s *AuthService) Refresh(ctx context.Context) (*driving.AuthStatus, error) {
	cred, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no credential at %s: nothing to refresh", s.store.Path())
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	_, fresh, err := s.refresher.Refresh(ctx, *cred)
	if err != nil {
		return nil, err
	}

	return &driving.AuthStatus{
		HasCredential:  true,
		CredentialPath: s.store.Path(),
		Environment:    s.environment.String(),
		RealmID:        fresh.RealmID,
		AccessToken:    fresh.MaskedAccessToken(),
		RefreshToken:   fresh.MaskedRefreshToken(),
	}, nil
}
