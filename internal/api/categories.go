package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/existflow/carnet/internal/model"
)

// CategoryInput holds the writable category fields
type CategoryInput struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ListCategories returns all categories
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", "", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// GetCategory returns one category by ID
func (c *Client) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	var cat model.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(id), "", nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory creates a category
func (c *Client) CreateCategory(ctx context.Context, token string, input CategoryInput) (*model.Category, error) {
	var cat model.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", token, input, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory replaces a category's fields
func (c *Client) UpdateCategory(ctx context.Context, token, id string, input CategoryInput) (*model.Category, error) {
	var cat model.Category
	if err := c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(id), token, input, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes a category
func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), token, nil, nil)
}

// UploadCategoryImage replaces a category's illustration
func (c *Client) UploadCategoryImage(ctx context.Context, token, id, filename string, file io.Reader) (*model.Category, error) {
	var cat model.Category
	path := "/api/categories/" + url.PathEscape(id) + "/image"
	if err := c.upload(ctx, path, token, filename, file, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategoryImage removes a category's illustration
func (c *Client) DeleteCategoryImage(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id)+"/image", token, nil, nil)
}

// CategoryRecipeCount returns how many recipes a category holds
func (c *Client) CategoryRecipeCount(ctx context.Context, id string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	path := "/api/categories/" + url.PathEscape(id) + "/recipes/count"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}
