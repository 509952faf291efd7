package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/existflow/carnet/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type categoryInput struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) getCategory(id string) (*model.Category, error) {
	var cat model.Category
	var createdAt string

	err := s.db.QueryRow(`
		SELECT id, name, icon, image_url, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.ImageURL, &createdAt)
	if err != nil {
		return nil, err
	}

	cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &cat, nil
}

func (s *Server) handleCategoryList(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT id, name, icon, image_url, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	defer rows.Close()

	cats := []model.Category{}
	for rows.Next() {
		var cat model.Category
		var createdAt string
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.ImageURL, &createdAt); err != nil {
			continue
		}
		cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cats = append(cats, cat)
	}

	return c.JSON(http.StatusOK, cats)
}

func (s *Server) handleCategoryGet(c echo.Context) error {
	cat, err := s.getCategory(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Catégorie introuvable")
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) handleCategoryCreate(c echo.Context) error {
	var req categoryInput
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}
	if req.Name == "" {
		return jsonError(c, http.StatusBadRequest, "Le nom de la catégorie est requis")
	}

	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO categories (id, name, icon, created_at) VALUES (?, ?, ?, ?)`,
		id, req.Name, req.Icon, now(),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return jsonError(c, http.StatusConflict, "Une catégorie porte déjà ce nom")
		}
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	cat, err := s.getCategory(id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.JSON(http.StatusCreated, cat)
}

func (s *Server) handleCategoryUpdate(c echo.Context) error {
	id := c.Param("id")

	var req categoryInput
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}
	if req.Name == "" {
		return jsonError(c, http.StatusBadRequest, "Le nom de la catégorie est requis")
	}

	res, err := s.db.Exec(`UPDATE categories SET name = ?, icon = ? WHERE id = ?`, req.Name, req.Icon, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return jsonError(c, http.StatusConflict, "Une catégorie porte déjà ce nom")
		}
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return jsonError(c, http.StatusNotFound, "Catégorie introuvable")
	}

	cat, err := s.getCategory(id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) handleCategoryDelete(c echo.Context) error {
	id := c.Param("id")

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM recipes WHERE category_id = ?`, id).Scan(&count); err == nil && count > 0 {
		return jsonError(c, http.StatusConflict, "La catégorie contient encore des recettes")
	}

	cat, err := s.getCategory(id)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Catégorie introuvable")
	}
	if cat.ImageURL != "" {
		s.removeUpload(cat.ImageURL)
	}

	if _, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCategoryImageUpload(c echo.Context) error {
	id := c.Param("id")

	cat, err := s.getCategory(id)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Catégorie introuvable")
	}

	url, err := s.saveUpload(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Fichier manquant")
	}
	if cat.ImageURL != "" {
		s.removeUpload(cat.ImageURL)
	}

	if _, err := s.db.Exec(`UPDATE categories SET image_url = ? WHERE id = ?`, url, id); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	cat, err = s.getCategory(id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) handleCategoryImageDelete(c echo.Context) error {
	id := c.Param("id")

	cat, err := s.getCategory(id)
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Catégorie introuvable")
	}
	if cat.ImageURL != "" {
		s.removeUpload(cat.ImageURL)
	}

	if _, err := s.db.Exec(`UPDATE categories SET image_url = '' WHERE id = ?`, id); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCategoryRecipeCount(c echo.Context) error {
	id := c.Param("id")

	if _, err := s.getCategory(id); err != nil {
		return jsonError(c, http.StatusNotFound, "Catégorie introuvable")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM recipes WHERE category_id = ?`, id).Scan(&count); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
