package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/srsports/backend/pkg/supabase"
)

// Identity is who an access token belongs to.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator resolves an access token into an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*Identity, error)
}

// ErrInvalidToken is returned for malformed, expired or badly signed tokens.
var ErrInvalidToken = errors.New("invalid_token")

// Claims are the Supabase access-token claims this service reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 access tokens locally with the project's JWT secret.
type JWTAuthenticator struct {
	secret   []byte
	audience string
}

// NewJWTAuthenticator returns a JWTAuthenticator. Tokens must carry the
// "authenticated" audience, as issued by GoTrue for signed-in users.
func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), audience: "authenticated"}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, accessToken string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(a.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// UserFetcher looks a user up by access token on the auth service.
type UserFetcher interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// RemoteAuthenticator asks the auth service about every token. It is used when
// no JWT secret is configured.
type RemoteAuthenticator struct {
	users UserFetcher
}

// NewRemoteAuthenticator returns a RemoteAuthenticator backed by users.
func NewRemoteAuthenticator(users UserFetcher) *RemoteAuthenticator {
	return &RemoteAuthenticator{users: users}
}

func (a *RemoteAuthenticator) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	u, err := a.users.GetUser(ctx, accessToken)
	if err != nil {
		if supabase.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, err
	}
	return &Identity{UserID: u.ID, Email: u.Email}, nil
}
