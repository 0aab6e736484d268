package domain

// Credential is the bearer token pair authorizing calls to QuickBooks Online,
// together with the realm (company) the tokens belong to.
//
// The credential is read once at process start, mutated only by a refresh,
// and persisted atomically after every successful refresh. A batch run never
// has more than one writer.
type Credential struct {
	// AccessToken is the short-lived bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken obtains a new token pair when the access token expires.
	RefreshToken string `json:"refresh_token"`
	// RealmID is the QuickBooks company identifier the tokens are scoped to.
	RealmID string `json:"realm_id"`
}

// IsComplete returns true if the credential can authorize API calls.
func (c Credential) IsComplete() bool {
	return c.AccessToken != "" && c.RealmID != ""
}

// HasRefreshToken returns true if a refresh grant is possible.
func (c Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// MaskedAccessToken returns a redacted form safe for display.
func (c Credential) MaskedAccessToken() string {
	return maskToken(c.AccessToken)
}

// MaskedRefreshToken returns a redacted form safe for display.
func (c Credential) MaskedRefreshToken() string {
	return maskToken(c.RefreshToken)
}

func maskToken(tok string) string {
	if len(tok) <= 8 {
		if tok == "" {
			return "(not set)"
		}
		return "****"
	}
	return "****" + tok[len(tok)-4:]
}
