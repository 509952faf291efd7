package model

import "time"

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// Step is one numbered instruction
type Step struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Prerequisite is something to prepare before starting (preheat oven,
// soak beans overnight, ...)
type Prerequisite struct {
	Text string `json:"text"`
}

// Recipe mirrors the server schema 1:1. The client treats it as an
// immutable snapshot; changes go through new requests.
type Recipe struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	CategoryID    string         `json:"category_id"`
	AuthorID      string         `json:"author_id"`
	Servings      int            `json:"servings,omitempty"`
	PrepMinutes   int            `json:"prep_minutes,omitempty"`
	CookMinutes   int            `json:"cook_minutes,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	Ingredients   []Ingredient   `json:"ingredients"`
	Steps         []Step         `json:"steps"`
	Prerequisites []Prerequisite `json:"prerequisites,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TotalMinutes returns prep + cook time
func (r *Recipe) TotalMinutes() int {
	return r.PrepMinutes + r.CookMinutes
}

// RecipePage is one page of a paginated recipe listing
type RecipePage struct {
	Items   []Recipe `json:"items"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}
