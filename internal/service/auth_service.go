package service

import (
	"context"
	"strings"

	"github.com/srsports/backend/internal/model"
	"github.com/srsports/backend/pkg/supabase"
)

// AuthClient is the part of the Supabase client the auth service needs.
type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Credentials is the sign-in / sign-up form.
type Credentials struct {
	Email    string `json:"email" validate:"email,max=254"`
	Password string `json:"password" validate:"min=6,max=72"`
}

// AuthService は認証に関するビジネスロジックのインターフェース
type AuthService interface {
	SignIn(ctx context.Context, c Credentials) (*model.AuthSession, error)
	// SignUp returns a session with empty tokens when the account must be
	// confirmed by e-mail before the first sign-in.
	SignUp(ctx context.Context, c Credentials) (*model.AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*model.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	User(ctx context.Context, accessToken string) (*model.User, error)
}

type authServiceImpl struct {
	client AuthClient
}

// NewAuthService creates an AuthService backed by the Supabase auth API.
func NewAuthService(client AuthClient) AuthService {
	return &authServiceImpl{client: client}
}

func (s *authServiceImpl) SignIn(ctx context.Context, c Credentials) (*model.AuthSession, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	sess, err := s.client.SignInWithPassword(ctx, c.Email, c.Password)
	if err != nil {
		return nil, err
	}
	return toAuthSession(sess), nil
}

func (s *authServiceImpl) SignUp(ctx context.Context, c Credentials) (*model.AuthSession, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	sess, err := s.client.SignUp(ctx, c.Email, c.Password)
	if err != nil {
		return nil, err
	}
	return toAuthSession(sess), nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*model.AuthSession, error) {
	if refreshToken == "" {
		return nil, ErrUnauthenticated
	}
	sess, err := s.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return toAuthSession(sess), nil
}

// SignOut revokes the session server-side. A missing token is a no-op.
func (s *authServiceImpl) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return s.client.SignOut(ctx, accessToken)
}

func (s *authServiceImpl) User(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.client.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return toUser(u), nil
}

func (c *Credentials) validate() error {
	c.Email = strings.TrimSpace(c.Email)
	return validateStruct(c)
}

func toUser(u *supabase.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toAuthSession(s *supabase.Session) *model.AuthSession {
	out := &model.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         toUser(s.User),
	}
	if s.AccessToken != "" {
		out.ExpiresAt = s.Expiry()
	}
	return out
}
