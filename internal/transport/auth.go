package transport

import "net/http"

// Authenticator applies credentials to outgoing HTTP requests. The
// credential value itself lives inside the authenticator and is never
// logged.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth applies no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// BearerAuth authenticates with an Authorization bearer token.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	if a.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// HeaderAuth authenticates by setting a custom header to a raw value.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	if a.Header == "" || a.Value == "" {
		return
	}
	req.Header.Set(a.Header, a.Value)
}
