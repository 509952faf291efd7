package api

import (
	"context"
	"io"
	"net/http"

	"github.com/existflow/carnet/internal/model"
)

// UpdateProfileRequest carries profile fields to change. Nil pointers are
// omitted from the payload and left untouched server-side.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
}

// UpdateProfile patches the current user's profile and returns the
// updated identity
func (c *Client) UpdateProfile(ctx context.Context, token string, req UpdateProfileRequest) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPatch, "/api/users/me", token, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword sets a new password, verifying the current one
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	body := map[string]string{
		"current_password": current,
		"new_password":     next,
	}
	return c.do(ctx, http.MethodPost, "/api/users/me/password", token, body, nil)
}

// UploadAvatar replaces the current user's avatar image
func (c *Client) UploadAvatar(ctx context.Context, token, filename string, file io.Reader) (*model.User, error) {
	var user model.User
	if err := c.upload(ctx, "/api/users/me/avatar", token, filename, file, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAvatar removes the current user's avatar image
func (c *Client) DeleteAvatar(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/me/avatar", token, nil, nil)
}

// ListInvited returns the members this user brought in
func (c *Client) ListInvited(ctx context.Context, token string) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me/invited", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
