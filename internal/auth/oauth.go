package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"planboard/internal/identity"
)

const githubAPI = "https://api.github.com"

// OAuthProvider runs the authorization code flow for one identity provider variant.
type OAuthProvider struct {
	Kind   identity.Provider
	Config *oauth2.Config

	fetch func(ctx context.Context, token *oauth2.Token) (map[string]any, error)
}

// Providers is the set of configured providers keyed by variant.
type Providers map[identity.Provider]*OAuthProvider

func (p Providers) Get(name string) (*OAuthProvider, error) {
	kind, err := identity.ParseProvider(name)
	if err != nil {
		return nil, err
	}
	provider, ok := p[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not configured", identity.ErrUnknownProvider, kind)
	}
	return provider, nil
}

// Configured lists the enabled providers in display order.
func (p Providers) Configured() []identity.Provider {
	var out []identity.Provider
	for _, kind := range identity.Providers {
		if _, ok := p[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

// Profile exchanges the code, reads the provider payload and normalizes it.
func (p *OAuthProvider) Profile(ctx context.Context, code string) (identity.Profile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return identity.Profile{}, fmt.Errorf("exchange code: %w", err)
	}
	raw, err := p.fetch(ctx, token)
	if err != nil {
		return identity.Profile{}, err
	}
	return identity.Normalize(p.Kind, raw)
}

// NewGitHubProvider reads the profile from the REST API. apiBase is empty for api.github.com.
func NewGitHubProvider(clientID, clientSecret, redirectURL, apiBase string) *OAuthProvider {
	if apiBase == "" {
		apiBase = githubAPI
	}
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     endpoints.GitHub,
		Scopes:       []string{"read:user", "user:email"},
	}
	return &OAuthProvider{
		Kind:   identity.GitHub,
		Config: cfg,
		fetch: func(ctx context.Context, token *oauth2.Token) (map[string]any, error) {
			body, err := getJSON(ctx, cfg.Client(ctx, token), apiBase+"/user")
			if err != nil {
				return nil, fmt.Errorf("github profile: %w", err)
			}
			return identity.DecodePayload(body)
		},
	}
}

// NewGoogleProvider verifies the id_token returned with the access token.
func NewGoogleProvider(clientID, clientSecret, redirectURL string, verifier *IDTokenVerifier) *OAuthProvider {
	return &OAuthProvider{
		Kind: identity.Google,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		fetch: idTokenClaims(verifier),
	}
}

func NewAzureADProvider(clientID, clientSecret, tenant, redirectURL string, verifier *IDTokenVerifier) *OAuthProvider {
	return &OAuthProvider{
		Kind: identity.AzureAD,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.AzureAD(tenant),
			Scopes:       []string{"openid", "email", "profile", "User.Read"},
		},
		fetch: idTokenClaims(verifier),
	}
}

func idTokenClaims(verifier *IDTokenVerifier) func(context.Context, *oauth2.Token) (map[string]any, error) {
	return func(_ context.Context, token *oauth2.Token) (map[string]any, error) {
		raw, _ := token.Extra("id_token").(string)
		return verifier.Verify(raw)
	}
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
