package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/existflow/carnet/internal/model"
)

// RecipeFilter narrows and paginates recipe listings. Nil fields are left
// out of the query string entirely; a non-nil empty string is sent as-is.
// The distinction is deliberate: callers choose which they mean by
// choosing whether to set the pointer.
type RecipeFilter struct {
	CategoryID *string
	AuthorID   *string
	Search     *string
	Page       *int
	PerPage    *int
}

// Values serializes only the fields that are set
func (f RecipeFilter) Values() url.Values {
	v := url.Values{}
	if f.CategoryID != nil {
		v.Set("category_id", *f.CategoryID)
	}
	if f.AuthorID != nil {
		v.Set("author_id", *f.AuthorID)
	}
	if f.Search != nil {
		v.Set("search", *f.Search)
	}
	if f.Page != nil {
		v.Set("page", strconv.Itoa(*f.Page))
	}
	if f.PerPage != nil {
		v.Set("per_page", strconv.Itoa(*f.PerPage))
	}
	return v
}

// RecipeInput holds the writable recipe fields
type RecipeInput struct {
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	CategoryID    string               `json:"category_id"`
	Servings      int                  `json:"servings,omitempty"`
	PrepMinutes   int                  `json:"prep_minutes,omitempty"`
	CookMinutes   int                  `json:"cook_minutes,omitempty"`
	Ingredients   []model.Ingredient   `json:"ingredients"`
	Steps         []model.Step         `json:"steps"`
	Prerequisites []model.Prerequisite `json:"prerequisites,omitempty"`
}

// ListRecipes returns one page of recipes matching the filter
func (c *Client) ListRecipes(ctx context.Context, filter RecipeFilter) (*model.RecipePage, error) {
	path := "/api/recipes"
	if q := filter.Values().Encode(); q != "" {
		path += "?" + q
	}
	var page model.RecipePage
	if err := c.do(ctx, http.MethodGet, path, "", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRecipe returns one recipe by ID
func (c *Client) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), "", nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// CreateRecipe creates a recipe owned by the token's user
func (c *Client) CreateRecipe(ctx context.Context, token string, input RecipeInput) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := c.do(ctx, http.MethodPost, "/api/recipes", token, input, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe replaces a recipe's fields
func (c *Client) UpdateRecipe(ctx context.Context, token, id string, input RecipeInput) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := c.do(ctx, http.MethodPut, "/api/recipes/"+url.PathEscape(id), token, input, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipe removes a recipe
func (c *Client) DeleteRecipe(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id), token, nil, nil)
}

// UploadRecipeImage replaces a recipe's photo
func (c *Client) UploadRecipeImage(ctx context.Context, token, id, filename string, file io.Reader) (*model.Recipe, error) {
	var recipe model.Recipe
	path := "/api/recipes/" + url.PathEscape(id) + "/image"
	if err := c.upload(ctx, path, token, filename, file, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipeImage removes a recipe's photo
func (c *Client) DeleteRecipeImage(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/recipes/"+url.PathEscape(id)+"/image", token, nil, nil)
}
