package federation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/quatton/fina/pkg/db/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleScopes are requested on the consent screen.
var GoogleScopes = []string{"openid", "email", "profile"}

// Google identifies users from the id_token returned by the code exchange.
type Google struct {
	cfg      ClientConfig
	oauth    *oauth2.Config
	verifier IDTokenVerifier
	client   *http.Client
}

type GoogleOption func(*Google)

// WithGoogleEndpoint points the provider at a different authorization server.
func WithGoogleEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(g *Google) { g.oauth.Endpoint = ep }
}

func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(g *Google) { g.client = client }
}

func NewGoogle(cfg ClientConfig, verifier IDTokenVerifier, opts ...GoogleOption) *Google {
	g := &Google{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       GoogleScopes,
		},
		verifier: verifier,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.client = newHTTPClient(g.client)
	return g
}

func (g *Google) Name() models.Provider { return models.ProviderGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (g *Google) Identify(ctx context.Context, code string) (*Identity, error) {
	if !g.cfg.configured() {
		return nil, ErrNotConfigured
	}

	tok, err := g.oauth.Exchange(withClient(ctx, g.client), code)
	if err != nil {
		return nil, exchangeError(err)
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, fmt.Errorf("%w: token response has no id_token", ErrInvalidIdentity)
	}

	claims, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	return &Identity{
		Provider:    models.ProviderGoogle,
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}

// exchangeError separates a rejected code from an unreachable endpoint.
func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
