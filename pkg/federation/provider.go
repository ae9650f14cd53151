// Package federation exchanges authorization codes with external identity
// providers and extracts the resulting identity.
package federation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/quatton/fina/pkg/db/models"
	"golang.org/x/oauth2"
)

var (
	// ErrNotConfigured means the provider has no client credentials.
	ErrNotConfigured = errors.New("federation: provider not configured")
	// ErrExchange means the token endpoint rejected the code.
	ErrExchange = errors.New("federation: code exchange failed")
	// ErrInvalidIdentity means the provider's identity payload could not be
	// parsed or verified.
	ErrInvalidIdentity = errors.New("federation: invalid identity")
	// ErrMissingEmail means the provider did not disclose an email.
	ErrMissingEmail = errors.New("federation: email not provided")
	// ErrUpstream means a provider endpoint was unreachable or misbehaved.
	ErrUpstream = errors.New("federation: provider unavailable")
)

// DefaultTimeout bounds every outbound provider call.
const DefaultTimeout = 10 * time.Second

// Identity is what a provider vouches for after a successful exchange.
type Identity struct {
	Provider    models.Provider
	Subject     string
	Email       string
	DisplayName string
}

type Provider interface {
	Name() models.Provider

	// AuthCodeURL builds the consent URL. An empty state is omitted.
	AuthCodeURL(state string) string

	// Identify exchanges code and returns the identity behind it.
	Identify(ctx context.Context, code string) (*Identity, error)
}

// ClientConfig is the per-provider OAuth client registration.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c ClientConfig) configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// withClient makes oauth2 use client for token exchange.
func withClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}

// Registry resolves providers by their path name.
type Registry struct {
	providers map[models.Provider]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[models.Provider]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[models.Provider(name)]
	return p, ok
}
