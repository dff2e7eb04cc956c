package remote

import (
	"sync"

	"golang.org/x/oauth2"
)

// TokenSource is an oauth2.TokenSource over a static bearer token that can be
// replaced while requests are in flight, e.g. after the config file changes.
type TokenSource struct {
	mu    sync.RWMutex
	token string
}

// NewTokenSource creates a token source holding token.
func NewTokenSource(token string) *TokenSource {
	return &TokenSource{token: token}
}

// SetToken replaces the bearer token used by subsequent requests.
func (t *TokenSource) SetToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

// Current returns the configured token, possibly empty.
func (t *TokenSource) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Token implements oauth2.TokenSource.
func (t *TokenSource) Token() (*oauth2.Token, error) {
	return &oauth2.Token{
		AccessToken: t.Current(),
		TokenType:   "Bearer",
	}, nil
}
