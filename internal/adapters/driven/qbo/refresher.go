package qbo

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

// TokenURL is the Intuit OAuth2 token endpoint.
const TokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer" //nolint:gosec // G101: endpoint URL, not a credential

// Ensure Refresher implements the interface.
var _ driven.TokenRefresher = (*Refresher)(nil)

// Refresher exchanges a refresh token for a fresh bearer credential.
// Each Refresh call is exactly one grant attempt; there is no caching and
// no background renewal here.
type Refresher struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
}

// NewRefresher creates a refresher for the Intuit token endpoint.
func NewRefresher(clientID, clientSecret string) *Refresher {
	return NewRefresherWithTokenURL(clientID, clientSecret, TokenURL)
}

// NewRefresherWithTokenURL creates a refresher against a specific token
// endpoint.
func NewRefresherWithTokenURL(clientID, clientSecret, tokenURL string) *Refresher {
	return &Refresher{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
	}
}

// Refresh performs one refresh grant. Intuit wants the client id and secret
// as HTTP Basic auth on the token endpoint. The realm id is not part of the
// grant and carries over unchanged; a response without a rotated refresh
// token keeps the previous one.
func (r *Refresher) Refresh(ctx context.Context, cred domain.Credential) (domain.Credential, error) {
	if r.clientID == "" || r.clientSecret == "" {
		return domain.Credential{}, fmt.Errorf("%w: client_id and client_secret are not configured", domain.ErrTokenRefreshFailed)
	}
	if !cred.HasRefreshToken() {
		return domain.Credential{}, fmt.Errorf("%w: credential has no refresh token", domain.ErrTokenRefreshFailed)
	}

	conf := &oauth2.Config{
		ClientID:     r.clientID,
		ClientSecret: r.clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  r.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	// A source seeded with only the refresh token forces a refresh grant on
	// the first Token call.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})

	tok, err := src.Token()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	fresh := domain.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		RealmID:      cred.RealmID,
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}
	return fresh, nil
}
