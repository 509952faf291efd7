package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/carnet/internal/model"
	"github.com/labstack/echo/v4"
)

// redeemableInvite returns the inviter's user ID if the token is valid,
// unused and not expired
func (s *Server) redeemableInvite(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty invite token")
	}

	var createdBy, usedBy, expiresAt string
	err := s.db.QueryRow(`
		SELECT created_by, used_by, expires_at FROM invites WHERE token = ?`,
		token,
	).Scan(&createdBy, &usedBy, &expiresAt)
	if err != nil {
		return "", err
	}

	if usedBy != "" {
		return "", fmt.Errorf("invite already used")
	}
	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || time.Now().After(expiry) {
		return "", fmt.Errorf("invite expired")
	}
	return createdBy, nil
}

// handleInviteValidate lets the registration form check an invite before
// asking for credentials. Public by design.
func (s *Server) handleInviteValidate(c echo.Context) error {
	token := c.Param("token")

	if _, err := s.redeemableInvite(token); err != nil {
		return jsonError(c, http.StatusNotFound, "Invitation invalide ou expirée")
	}

	var invite model.Invite
	var createdAt, expiresAt string
	err := s.db.QueryRow(`
		SELECT token, created_by, used_by, expires_at, created_at
		FROM invites WHERE token = ?`,
		token,
	).Scan(&invite.Token, &invite.CreatedBy, &invite.UsedBy, &expiresAt, &createdAt)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Invitation invalide ou expirée")
	}

	invite.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	invite.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c.JSON(http.StatusOK, invite)
}

// handleInviteCreate mints a new invite for the caller to pass along.
// Invites expire in 7 days.
func (s *Server) handleInviteCreate(c echo.Context) error {
	userID := c.Get("user_id").(string)

	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		c.Logger().Error("rand error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	token := hex.EncodeToString(tokenBytes)

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	createdAt := time.Now()

	_, err := s.db.Exec(`
		INSERT INTO invites (token, created_by, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		token, userID, expiresAt.Format(time.RFC3339), createdAt.Format(time.RFC3339),
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	return c.JSON(http.StatusOK, model.Invite{
		Token:     token,
		CreatedBy: userID,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	})
}
