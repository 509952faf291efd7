package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/existflow/carnet/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type recipeInput struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	CategoryID    string               `json:"category_id"`
	Servings      int                  `json:"servings"`
	PrepMinutes   int                  `json:"prep_minutes"`
	CookMinutes   int                  `json:"cook_minutes"`
	Ingredients   []model.Ingredient   `json:"ingredients"`
	Steps         []model.Step         `json:"steps"`
	Prerequisites []model.Prerequisite `json:"prerequisites"`
}

func scanRecipe(row interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients, steps, prerequisites, createdAt, updatedAt string

	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.CategoryID, &r.AuthorID,
		&r.Servings, &r.PrepMinutes, &r.CookMinutes, &r.ImageURL,
		&ingredients, &steps, &prerequisites, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(ingredients), &r.Ingredients)
	json.Unmarshal([]byte(steps), &r.Steps)
	json.Unmarshal([]byte(prerequisites), &r.Prerequisites)
	if r.Ingredients == nil {
		r.Ingredients = []model.Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []model.Step{}
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

const recipeColumns = `id, title, description, category_id, author_id,
	servings, prep_minutes, cook_minutes, image_url,
	ingredients, steps, prerequisites, created_at, updated_at`

func (s *Server) getRecipe(id string) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	return scanRecipe(row)
}

// handleRecipeList returns one page of recipes. Filters are only applied
// when the query parameter is present, so an absent and an empty
// parameter behave differently on purpose.
func (s *Server) handleRecipeList(c echo.Context) error {
	where := "1=1"
	args := []any{}

	params := c.QueryParams()
	if vals, ok := params["category_id"]; ok {
		where += " AND category_id = ?"
		args = append(args, vals[0])
	}
	if vals, ok := params["author_id"]; ok {
		where += " AND author_id = ?"
		args = append(args, vals[0])
	}
	if vals, ok := params["search"]; ok {
		where += " AND (title LIKE ? OR description LIKE ?)"
		pattern := "%" + vals[0] + "%"
		args = append(args, pattern, pattern)
	}

	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	perPage := 20
	if v, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && v > 0 && v <= 100 {
		perPage = v
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM recipes WHERE `+where, args...).Scan(&total); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	defer rows.Close()

	items := []model.Recipe{}
	for rows.Next() {
		if r, err := scanRecipe(rows); err == nil {
			items = append(items, *r)
		}
	}

	return c.JSON(http.StatusOK, model.RecipePage{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (s *Server) handleRecipeGet(c echo.Context) error {
	recipe, err := s.getRecipe(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Recette introuvable")
	}
	return c.JSON(http.StatusOK, recipe)
}

func (s *Server) handleRecipeCreate(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req recipeInput
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}
	if req.Title == "" {
		return jsonError(c, http.StatusBadRequest, "Le titre est requis")
	}
	if _, err := s.getCategory(req.CategoryID); err != nil {
		return jsonError(c, http.StatusBadRequest, "Catégorie introuvable")
	}

	id := uuid.NewString()
	ingredients, _ := json.Marshal(req.Ingredients)
	steps, _ := json.Marshal(req.Steps)
	prerequisites, _ := json.Marshal(req.Prerequisites)
	ts := now()

	_, err := s.db.Exec(`
		INSERT INTO recipes (id, title, description, category_id, author_id,
			servings, prep_minutes, cook_minutes,
			ingredients, steps, prerequisites, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, req.Title, req.Description, req.CategoryID, userID,
		req.Servings, req.PrepMinutes, req.CookMinutes,
		string(ingredients), string(steps), string(prerequisites), ts, ts,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	recipe, err := s.getRecipe(id)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.JSON(http.StatusCreated, recipe)
}

// canEditRecipe allows the author and admins
func (s *Server) canEditRecipe(c echo.Context, recipe *model.Recipe) bool {
	return recipe.AuthorID == c.Get("user_id").(string) || c.Get("is_admin").(bool)
}

func (s *Server) handleRecipeUpdate(c echo.Context) error {
	recipe, err := s.getRecipe(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Recette introuvable")
	}
	if !s.canEditRecipe(c, recipe) {
		return jsonError(c, http.StatusForbidden, "Action non autorisée")
	}

	var req recipeInput
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Requête invalide")
	}
	if req.Title == "" {
		return jsonError(c, http.StatusBadRequest, "Le titre est requis")
	}
	if _, err := s.getCategory(req.CategoryID); err != nil {
		return jsonError(c, http.StatusBadRequest, "Catégorie introuvable")
	}

	ingredients, _ := json.Marshal(req.Ingredients)
	steps, _ := json.Marshal(req.Steps)
	prerequisites, _ := json.Marshal(req.Prerequisites)

	_, err = s.db.Exec(`
		UPDATE recipes SET title = ?, description = ?, category_id = ?,
			servings = ?, prep_minutes = ?, cook_minutes = ?,
			ingredients = ?, steps = ?, prerequisites = ?, updated_at = ?
		WHERE id = ?`,
		req.Title, req.Description, req.CategoryID,
		req.Servings, req.PrepMinutes, req.CookMinutes,
		string(ingredients), string(steps), string(prerequisites), now(),
		recipe.ID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	updated, err := s.getRecipe(recipe.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleRecipeDelete(c echo.Context) error {
	recipe, err := s.getRecipe(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Recette introuvable")
	}
	if !s.canEditRecipe(c, recipe) {
		return jsonError(c, http.StatusForbidden, "Action non autorisée")
	}

	if recipe.ImageURL != "" {
		s.removeUpload(recipe.ImageURL)
	}

	if _, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, recipe.ID); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRecipeImageUpload(c echo.Context) error {
	recipe, err := s.getRecipe(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Recette introuvable")
	}
	if !s.canEditRecipe(c, recipe) {
		return jsonError(c, http.StatusForbidden, "Action non autorisée")
	}

	url, err := s.saveUpload(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Fichier manquant")
	}
	if recipe.ImageURL != "" {
		s.removeUpload(recipe.ImageURL)
	}

	if _, err := s.db.Exec(`UPDATE recipes SET image_url = ?, updated_at = ? WHERE id = ?`, url, now(), recipe.ID); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}

	updated, err := s.getRecipe(recipe.ID)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleRecipeImageDelete(c echo.Context) error {
	recipe, err := s.getRecipe(c.Param("id"))
	if err != nil {
		return jsonError(c, http.StatusNotFound, "Recette introuvable")
	}
	if !s.canEditRecipe(c, recipe) {
		return jsonError(c, http.StatusForbidden, "Action non autorisée")
	}

	if recipe.ImageURL != "" {
		s.removeUpload(recipe.ImageURL)
	}

	if _, err := s.db.Exec(`UPDATE recipes SET image_url = '', updated_at = ? WHERE id = ?`, now(), recipe.ID); err != nil {
		c.Logger().Error("db error:", err)
		return jsonError(c, http.StatusInternalServerError, "Erreur interne")
	}
	return c.NoContent(http.StatusNoContent)
}
