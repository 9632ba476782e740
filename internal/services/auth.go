package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/kidspot/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// refreshMargin is how long before expiry a token is treated as stale.
	refreshMargin = 30 * time.Second
)

// AuthError carries the upstream status and body of a failed token refresh.
//
// An account surfacing an AuthError is unusable until a later call
// retries the exchange.
type AuthError struct {
	Label  string
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token refresh failed for account %s: status %d: %s", e.Label, e.Status, e.Body)
}

func (e *AuthError) Unwrap() error {
	return shared.ErrAuthFailed
}

// TokenManager exchanges a long-lived refresh token for short-lived
// bearer credentials against the authorization endpoint.
//
// Refreshes are lazy: the exchange runs on the first Token call and
// again whenever the cached token is within refreshMargin of expiry.
// The underlying [oauth2.TokenSource] serializes refreshes, so
// concurrent callers block on a single exchange and share its result.
type TokenManager struct {
	label  string
	source oauth2.TokenSource
}

// TokenManagerOpts contains the credentials for one account.
type TokenManagerOpts struct {
	Label        string
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string       // defaults to the Spotify accounts endpoint
	HTTPClient   *http.Client // defaults to http.DefaultClient
}

// NewTokenManager creates a TokenManager for one account's credentials.
func NewTokenManager(opts TokenManagerOpts) (*TokenManager, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" || opts.RefreshToken == "" {
		return nil, fmt.Errorf("%w for account %s", shared.ErrMissingCredentials, opts.Label)
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}

	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: opts.TokenURL},
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	base := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: opts.RefreshToken})

	return &TokenManager{
		label:  opts.Label,
		source: oauth2.ReuseTokenSourceWithExpiry(nil, base, refreshMargin),
	}, nil
}

// Label returns the account label the manager was created for.
func (m *TokenManager) Label() string {
	return m.label
}

// Token returns a valid bearer token, refreshing it first if the cached
// one is missing or within refreshMargin of expiry.
func (m *TokenManager) Token() (*oauth2.Token, error) {
	token, err := m.source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, &AuthError{Label: m.label, Status: status, Body: string(retrieveErr.Body)}
		}
		return nil, fmt.Errorf("%w for account %s: %v", shared.ErrRefreshFailed, m.label, err)
	}
	return token, nil
}
