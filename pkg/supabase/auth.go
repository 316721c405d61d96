package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// User is the GoTrue user object.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the token response of a successful sign-in or refresh.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Expiry returns when the access token expires.
func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInWithPassword exchanges e-mail and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  "grant_type=password",
		body:   credentials{Email: email, Password: password},
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SignUp creates an account. When the project requires e-mail confirmation
// GoTrue answers with a bare user object; the returned Session then carries
// only User and empty tokens.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   credentials{Email: email, Password: password},
	}, &raw)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" && s.User == nil {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, err
		}
		s.User = &u
	}
	return &s, nil
}

// RefreshSession trades a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	var s Session
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  "grant_type=refresh_token",
		body:   map[string]string{"refresh_token": refreshToken},
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetUser returns the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	err := c.do(ctx, request{
		method:      http.MethodGet,
		path:        "/auth/v1/user",
		accessToken: accessToken,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/v1/logout",
		accessToken: accessToken,
	}, nil)
}
