// Package identity maps external sign-ins to local authors and shapes the session they receive.
package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProvider  = errors.New("unknown identity provider")
	ErrInvalidEmail     = errors.New("invalid or missing email")
	ErrIdentityConflict = errors.New("email or username already exists")
	ErrSessionRevoked   = errors.New("session user no longer exists")
)

// Provider is the tagged variant of the supported external identity providers.
type Provider string

const (
	GitHub  Provider = "github"
	Google  Provider = "google"
	AzureAD Provider = "azuread"
)

// Providers lists the variants in sign-in page order.
var Providers = []Provider{GitHub, Google, AzureAD}

func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(name)); p {
	case GitHub, Google, AzureAD:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Role is the role tag given to authors first seen through p.
func (p Provider) Role() string {
	switch p {
	case GitHub:
		return "GithubUser"
	case Google:
		return "GoogleUser"
	case AzureAD:
		return "MicrosoftUser"
	}
	return ""
}

func (p Provider) DisplayName() string {
	switch p {
	case GitHub:
		return "GitHub"
	case Google:
		return "Google"
	case AzureAD:
		return "Microsoft"
	}
	return string(p)
}

// Profile is the canonical shape every provider payload is normalized into.
type Profile struct {
	ID       string
	Name     string
	Email    string
	Image    string
	Role     string
	Username string
	Provider Provider
	Bio      string
}

// Normalize maps a raw provider payload onto a Profile using the variant's field names.
func Normalize(p Provider, raw map[string]any) (Profile, error) {
	switch p {
	case GitHub:
		login := field(raw, "login")
		return Profile{
			ID:       field(raw, "id"),
			Name:     firstOf(field(raw, "name"), login),
			Email:    field(raw, "email"),
			Image:    field(raw, "avatar_url"),
			Role:     p.Role(),
			Username: login,
			Provider: p,
			Bio:      field(raw, "bio"),
		}, nil
	case Google:
		email := field(raw, "email")
		username := localPart(email)
		return Profile{
			ID:       field(raw, "sub"),
			Name:     firstOf(field(raw, "name"), username),
			Email:    email,
			Image:    field(raw, "picture"),
			Role:     p.Role(),
			Username: username,
			Provider: p,
		}, nil
	case AzureAD:
		email := firstOf(field(raw, "email"), field(raw, "upn"), field(raw, "preferred_username"))
		username := localPart(email)
		return Profile{
			ID:       firstOf(field(raw, "oid"), field(raw, "id")),
			Name:     firstOf(field(raw, "name"), username),
			Email:    email,
			Image:    field(raw, "picture"),
			Role:     p.Role(),
			Username: username,
			Provider: p,
		}, nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProvider, string(p))
}

// DecodePayload decodes a JSON profile keeping numeric ids exact.
func DecodePayload(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return raw, nil
}

func field(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func localPart(email string) string {
	if email == "" {
		return ""
	}
	return strings.SplitN(email, "@", 2)[0]
}
