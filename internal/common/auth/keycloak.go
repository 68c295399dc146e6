// internal/common/auth/keycloak.go
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"admissions-engine/internal/common/errors"
	apphttp "admissions-engine/internal/common/http"
)

// Roles known to the admissions platform.
const (
	RoleStudent   = "student"
	RoleInstitute = "institute"
	RoleCompany   = "company"
	RoleAdmin     = "admin"
)

var knownRoles = []string{RoleAdmin, RoleInstitute, RoleCompany, RoleStudent}

// Session is the resolved caller identity. It is trusted as-is by the engine.
type Session struct {
	UserID        string `json:"userId"`
	EmailVerified bool   `json:"emailVerified"`
	Role          string `json:"role"`
}

// SessionResolver turns a bearer token into a Session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*Session, error)
}

// KeycloakClient resolves sessions through the realm's token introspection endpoint.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *apphttp.Client
}

// TokenInfo holds the fields of the introspection response the platform reads.
type TokenInfo struct {
	Active        bool   `json:"active"`
	Sub           string `json:"sub,omitempty"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Exp           int64  `json:"exp,omitempty"`
	RealmAccess   struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// NewKeycloakClient creates a new instance of KeycloakClient.
func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   apphttp.NewClient(10 * time.Second),
	}
}

// ValidateToken checks if an access token is valid and active.
func (k *KeycloakClient) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {
	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	var info TokenInfo
	if err := k.httpClient.PostForm(ctx, introspectURL, data, &info); err != nil {
		var statusErr *apphttp.StatusError
		if stderrors.As(err, &statusErr) && !statusErr.Transient() {
			return nil, errors.NewAuthenticationError(statusErr.Error())
		}
		return nil, errors.NewExternalServiceError("keycloak", err)
	}

	if !info.Active {
		return nil, errors.NewAuthenticationError("token is expired, revoked or malformed")
	}

	return &info, nil
}

// Resolve implements SessionResolver.
func (k *KeycloakClient) Resolve(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.NewAuthenticationError("missing session token")
	}
	info, err := k.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:        info.Sub,
		EmailVerified: info.EmailVerified,
		Role:          roleFrom(info.RealmAccess.Roles),
	}, nil
}

// roleFrom picks the most privileged platform role among the realm roles.
func roleFrom(roles []string) string {
	for _, known := range knownRoles {
		for _, r := range roles {
			if strings.EqualFold(r, known) {
				return known
			}
		}
	}
	return ""
}
