package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/carnet/internal/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	InviteToken string `json:"invite_token"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// handleRegister creates an account. Registration is invite-only, except
// for the very first account which bootstraps the family and becomes
// admin.
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}

	if req.Username == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "Nom d'utilisateur et mot de passe requis")
	}
	if len(req.Password) < 8 {
		return jsonError(c, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
	}

	var userCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	isAdmin := 0
	invitedBy := ""
	if userCount == 0 {
		// First account: no invite needed, gets admin
		isAdmin = 1
	} else {
		inviterID, err := s.redeemableInvite(req.InviteToken)
		if err != nil {
			return jsonError(c, http.StatusForbidden, "Invitation invalide ou expirée")
		}
		invitedBy = inviterID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	userID := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO users (id, username, password_hash, full_name, is_admin, invited_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, req.Username, string(hash), req.FullName, isAdmin, invitedBy, now(),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return jsonError(c, http.StatusConflict, "Nom d'utilisateur déjà utilisé")
		}
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	// Burn the invite only once the account exists
	if invitedBy != "" {
		s.db.Exec(`UPDATE invites SET used_by = ? WHERE token = ?`, userID, req.InviteToken)
	}

	token, expiresAt, err := s.createSession(userID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	logger.Info("User registered", logger.F("username", req.Username))

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}

	var userID, passwordHash string
	err := s.db.QueryRow(`
		SELECT id, password_hash FROM users WHERE username = ?`,
		req.Username,
	).Scan(&userID, &passwordHash)
	if err != nil {
		return jsonError(c, http.StatusUnauthorized, "Identifiants invalides")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return jsonError(c, http.StatusUnauthorized, "Identifiants invalides")
	}

	token, expiresAt, err := s.createSession(userID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	logger.Info("User logged in", logger.F("username", req.Username))

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

// handleMe returns the identity behind the presented token
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(string)

	user, err := s.getUser(userID)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Utilisateur introuvable")
	}
	return c.JSON(http.StatusOK, user)
}

// handleRefresh issues a fresh token for a still-valid session
func (s *Server) handleRefresh(c echo.Context) error {
	userID := c.Get("user_id").(string)

	token, expiresAt, err := s.createSession(userID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(userID string) (string, time.Time, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(tokenBytes)

	// Sessions expire in 30 days
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, token, expiresAt.Format(time.RFC3339), now(),
	)

	return token, expiresAt, err
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
