package remote

import (
	"net/http"

	"golang.org/x/oauth2"
)

// authTransport attaches the bearer token through oauth2.Transport when one is
// configured and sends the request unauthenticated otherwise.
type authTransport struct {
	tokens *TokenSource
	base   http.RoundTripper
	oauth  *oauth2.Transport
}

func newAuthTransport(tokens *TokenSource, base http.RoundTripper) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		tokens: tokens,
		base:   base,
		oauth:  &oauth2.Transport{Source: tokens, Base: base},
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens.Current() == "" {
		return t.base.RoundTrip(req)
	}
	return t.oauth.RoundTrip(req)
}
