package model

import "time"

// User is the server-authoritative identity. The client never mutates it
// locally; it is replaced wholesale after profile-changing operations.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Token is an issued bearer token. Immutable; a new login or refresh
// supersedes it wholesale.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired returns true if the token has passed its expiry
func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Invite is an invitation allowing one new account to register
type Invite struct {
	Token     string    `json:"token"`
	CreatedBy string    `json:"created_by"`
	UsedBy    string    `json:"used_by,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsUsed returns true if the invite has already been redeemed
func (i *Invite) IsUsed() bool {
	return i.UsedBy != ""
}
