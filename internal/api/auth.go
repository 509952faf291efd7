package api

import (
	"context"
	"net/http"

	"github.com/existflow/carnet/internal/model"
)

// RegisterRequest holds the fields for account creation. Registration is
// invite-only: the invite token comes from another member.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	InviteToken string `json:"invite_token"`
}

// Login exchanges credentials for a fresh token
func (c *Client) Login(ctx context.Context, username, password string) (*model.Token, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var token model.Token
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates an account and returns its first token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.Token, error) {
	var token model.Token
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Me returns the identity behind a token
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh trades a still-valid token for a fresh one
func (c *Client) Refresh(ctx context.Context, token string) (*model.Token, error) {
	var fresh model.Token
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", token, nil, &fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}
