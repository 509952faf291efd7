package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/existflow/carnet/internal/model"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// getUser loads a user row into the shared model type
func (s *Server) getUser(id string) (*model.User, error) {
	var user model.User
	var isAdmin int
	var createdAt string

	err := s.db.QueryRow(`
		SELECT id, username, full_name, avatar_url, is_admin, created_at
		FROM users WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Username, &user.FullName, &user.AvatarURL, &isAdmin, &createdAt)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = isAdmin == 1
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &user, nil
}

type profileUpdateRequest struct {
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
}

// handleProfileUpdate patches the caller's profile. Only fields present
// in the payload change.
func (s *Server) handleProfileUpdate(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}

	if req.Username != nil {
		if *req.Username == "" {
			return jsonError(c, http.StatusBadRequest, "Le nom d'utilisateur ne peut pas être vide")
		}
		_, err := s.db.Exec(`UPDATE users SET username = ? WHERE id = ?`, *req.Username, userID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				return jsonError(c, http.StatusConflict, "Nom d'utilisateur déjà utilisé")
			}
			c.Logger().Error("db error:", err)
			return jsonError(c, http.StatusInternalServerError, "Erreur interne")
		}
	}
	if req.FullName != nil {
		if _, err := s.db.Exec(`UPDATE users SET full_name = ? WHERE id = ?`, *req.FullName, userID); err != nil {
			c.Logger().Error("db error:", err)
			return jsonError(c, http.StatusInternalServerError, "Erreur interne")
		}
	}

	user, err := s.getUser(userID)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Utilisateur introuvable")
	}
	return c.JSON(http.StatusOK, user)
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handlePasswordChange sets a new password after checking the current one
func (s *Server) handlePasswordChange(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req passwordChangeRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}
	if len(req.NewPassword) < 8 {
		return jsonError(c, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères")
	}

	var currentHash string
	if err := s.db.QueryRow(`SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&currentHash); err != nil {
		return jsonError(c, http.StatusNotFound, "Utilisateur introuvable")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)); err != nil {
		return jsonError(c, http.StatusUnauthorized, "Mot de passe actuel incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	if _, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), userID); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	return c.NoContent(http.StatusNoContent)
}

// handleAvatarUpload replaces the caller's avatar image
func (s *Server) handleAvatarUpload(c echo.Context) error {
	userID := c.Get("user_id").(string)

	url, err := s.saveUpload(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Fichier manquant")
	}

	// Drop the previous avatar file
	if user, err := s.getUser(userID); err == nil && user.AvatarURL != "" {
		s.removeUpload(user.AvatarURL)
	}

	if _, err := s.db.Exec(`UPDATE users SET avatar_url = ? WHERE id = ?`, url, userID); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	user, err := s.getUser(userID)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Utilisateur introuvable")
	}
	return c.JSON(http.StatusOK, user)
}

// handleAvatarDelete removes the caller's avatar image
func (s *Server) handleAvatarDelete(c echo.Context) error {
	userID := c.Get("user_id").(string)

	if user, err := s.getUser(userID); err == nil && user.AvatarURL != "" {
		s.removeUpload(user.AvatarURL)
	}

	if _, err := s.db.Exec(`UPDATE users SET avatar_url = '' WHERE id = ?`, userID); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.NoContent(http.StatusNoContent)
}

// handleInvitedList returns the members the caller invited
func (s *Server) handleInvitedList(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := s.db.Query(`
		SELECT id FROM users WHERE invited_by = ? ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		if user, err := s.getUser(id); err == nil {
			users = append(users, *user)
		}
	}

	return c.JSON(http.StatusOK, users)
}
