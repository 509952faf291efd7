package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/existflow/carnet/internal/model"
)

// ValidateInvite checks an invite token before registration. The token is
// server data and goes through path escaping like any other segment.
func (c *Client) ValidateInvite(ctx context.Context, inviteToken string) (*model.Invite, error) {
	var invite model.Invite
	path := "/api/invites/validate/" + url.PathEscape(inviteToken)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

// CreateInvite mints a new invite on behalf of the current user
func (c *Client) CreateInvite(ctx context.Context, token string) (*model.Invite, error) {
	var invite model.Invite
	if err := c.do(ctx, http.MethodPost, "/api/invites", token, nil, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}
