package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

// --- Mock implementations for refresher testing ---
// Note: These are prefixed with "ref" and share an event log so tests can
// assert ordering across collaborators.

type refMockRefresher struct {
	events *[]string
	result domain.Credential
	err    error
	calls  int
}

func (r *refMockRefresher) Refresh(_ context.Context, _ domain.Credential) (domain.Credential, error) {
	r.calls++
	*r.events = append(*r.events, "grant")
	if r.err != nil {
		return domain.Credential{}, r.err
	}
	return r.result, nil
}

type refMockCredStore struct {
	events  *[]string
	saved   []domain.Credential
	saveErr error
}

func (s *refMockCredStore) Load(_ context.Context) (*domain.Credential, error) {
	return nil, domain.ErrNotFound
}

func (s *refMockCredStore) Save(_ context.Context, cred domain.Credential) error {
	*s.events = append(*s.events, "save")
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, cred)
	return nil
}

func (s *refMockCredStore) Path() string { return "/tmp/qb_tokens.json" }

type refMockFactory struct {
	events *[]string
	built  []domain.Credential
}

func (f *refMockFactory) NewSession(cred domain.Credential) driven.RemoteSession {
	*f.events = append(*f.events, "session")
	f.built = append(f.built, cred)
	return &batchMockSession{cred: cred}
}

type refMockConfirmer struct {
	events   *[]string
	messages []string
	err      error
}

func (c *refMockConfirmer) Confirm(_ context.Context, message string) error {
	*c.events = append(*c.events, "confirm")
	c.messages = append(c.messages, message)
	return c.err
}

// --- Tests ---

var (
	refOldCred = domain.Credential{AccessToken: "old-access", RefreshToken: "old-refresh", RealmID: "realm-9"}
	refNewCred = domain.Credential{AccessToken: "new-access", RefreshToken: "new-refresh", RealmID: "realm-9"}
)

func TestAuthRefresher_Refresh_Success(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{events: &events, result: refNewCred}
	factory := &refMockFactory{events: &events}
	confirmer := &refMockConfirmer{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, confirmer)

	session, cred, err := refresher.Refresh(context.Background(), refOldCred)

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, refNewCred, cred)

	// Persist-before-use: the grant result hits disk before the operator is
	// notified and before any session exists for it
	assert.Equal(t, []string{"grant", "save", "confirm", "session"}, events)

	// The persisted credential and the session credential are the same
	require.Len(t, store.saved, 1)
	require.Len(t, factory.built, 1)
	assert.Equal(t, store.saved[0], factory.built[0])
}

func TestAuthRefresher_Refresh_NilConfirmer(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{events: &events, result: refNewCred}
	factory := &refMockFactory{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, nil)

	session, _, err := refresher.Refresh(context.Background(), refOldCred)

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, []string{"grant", "save", "session"}, events)
}

func TestAuthRefresher_Refresh_NoRefreshToken(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{events: &events, result: refNewCred}
	factory := &refMockFactory{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, nil)

	_, _, err := refresher.Refresh(context.Background(), domain.Credential{AccessToken: "at", RealmID: "realm-9"})

	require.Error(t, err)
	assert.True(t, domain.IsRefreshFailure(err))

	// The grant is never attempted without a refresh token
	assert.Equal(t, 0, grant.calls)
	assert.Empty(t, events)
}

func TestAuthRefresher_Refresh_GrantFails(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{events: &events, err: errors.New("invalid_grant")}
	factory := &refMockFactory{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, nil)

	_, cred, err := refresher.Refresh(context.Background(), refOldCred)

	require.Error(t, err)
	assert.True(t, domain.IsRefreshFailure(err))
	assert.Contains(t, err.Error(), "invalid_grant")

	// The old credential survives untouched; nothing saved, no session
	assert.Equal(t, refOldCred, cred)
	assert.Empty(t, store.saved)
	assert.Empty(t, factory.built)
	assert.Equal(t, 1, grant.calls)
}

func TestAuthRefresher_Refresh_AlreadyTaggedGrantFailure(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{
		events: &events,
		err:    domain.ErrTokenRefreshFailed,
	}
	factory := &refMockFactory{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, nil)

	_, _, err := refresher.Refresh(context.Background(), refOldCred)

	require.Error(t, err)
	assert.True(t, domain.IsRefreshFailure(err))
}

func TestAuthRefresher_Refresh_SaveFails(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events, saveErr: errors.New("disk full")}
	grant := &refMockRefresher{events: &events, result: refNewCred}
	factory := &refMockFactory{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, nil)

	_, _, err := refresher.Refresh(context.Background(), refOldCred)

	// A credential that cannot be persisted must never be used
	require.Error(t, err)
	assert.True(t, domain.IsRefreshFailure(err))
	assert.Empty(t, factory.built)
}

func TestAuthRefresher_Refresh_ConfirmerDeclines(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{events: &events, result: refNewCred}
	factory := &refMockFactory{events: &events}
	confirmer := &refMockConfirmer{events: &events, err: context.Canceled}

	refresher := NewAuthRefresher(store, grant, factory, confirmer)

	_, _, err := refresher.Refresh(context.Background(), refOldCred)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, factory.built)
}

func TestAuthRefresher_Refresh_ConfirmerMessageNamesCredentialPath(t *testing.T) {
	var events []string
	store := &refMockCredStore{events: &events}
	grant := &refMockRefresher{events: &events, result: refNewCred}
	factory := &refMockFactory{events: &events}
	confirmer := &refMockConfirmer{events: &events}

	refresher := NewAuthRefresher(store, grant, factory, confirmer)

	_, _, err := refresher.Refresh(context.Background(), refOldCred)

	require.NoError(t, err)
	require.Len(t, confirmer.messages, 1)
	assert.Contains(t, confirmer.messages[0], store.Path())
}
