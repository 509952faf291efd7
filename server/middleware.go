package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// authMiddleware checks for a valid bearer token and puts the caller's
// user_id and is_admin flag on the request context
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return jsonError(c, http.StatusUnauthorized, "Authentification requise")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return jsonError(c, http.StatusUnauthorized, "Format d'authentification invalide")
		}

		var userID, expiresAt string
		err := s.db.QueryRow(`
			SELECT user_id, expires_at FROM sessions WHERE token = ?`,
			token,
		).Scan(&userID, &expiresAt)
		if err != nil {
			return jsonError(c, http.StatusUnauthorized, "Jeton invalide")
		}

		expiry, err := time.Parse(time.RFC3339, expiresAt)
		if err != nil || time.Now().After(expiry) {
			return jsonError(c, http.StatusUnauthorized, "Jeton expiré")
		}

		var isAdmin int
		s.db.QueryRow(`SELECT is_admin FROM users WHERE id = ?`, userID).Scan(&isAdmin)

		c.Set("user_id", userID)
		c.Set("is_admin", isAdmin == 1)
		return next(c)
	}
}
