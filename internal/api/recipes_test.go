package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestRecipeFilter_UnsetFieldsOmitted(t *testing.T) {
	v := RecipeFilter{}.Values()
	if len(v) != 0 {
		t.Errorf("Expected empty query values, got %v", v)
	}

	v = RecipeFilter{CategoryID: nil, Search: strPtr("tarte")}.Values()
	if _, ok := v["category_id"]; ok {
		t.Error("Expected category_id to be absent when nil")
	}
	if v.Get("search") != "tarte" {
		t.Errorf("Expected search=tarte, got %q", v.Get("search"))
	}
}

func TestRecipeFilter_ExplicitEmptyStringIsSent(t *testing.T) {
	// A non-nil empty string is a deliberate "set to empty" and goes on
	// the wire
	v := RecipeFilter{CategoryID: strPtr("")}.Values()
	if _, ok := v["category_id"]; !ok {
		t.Error("Expected category_id key for explicit empty string")
	}
	if got := v.Get("category_id"); got != "" {
		t.Errorf("Expected empty value, got %q", got)
	}
}

func TestRecipeFilter_AllFields(t *testing.T) {
	v := RecipeFilter{
		CategoryID: strPtr("c1"),
		AuthorID:   strPtr("u1"),
		Search:     strPtr("soupe"),
		Page:       intPtr(2),
		PerPage:    intPtr(50),
	}.Values()

	want := url.Values{
		"category_id": {"c1"},
		"author_id":   {"u1"},
		"search":      {"soupe"},
		"page":        {"2"},
		"per_page":    {"50"},
	}
	if v.Encode() != want.Encode() {
		t.Errorf("Expected %q, got %q", want.Encode(), v.Encode())
	}
}

func TestListRecipes_QueryString(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"items":[],"total":0,"page":1,"per_page":20}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.ListRecipes(context.Background(), RecipeFilter{
		CategoryID: strPtr("desserts"),
		Page:       intPtr(3),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotQuery.Get("category_id") != "desserts" {
		t.Errorf("Expected category_id=desserts, got %q", gotQuery.Get("category_id"))
	}
	if gotQuery.Get("page") != "3" {
		t.Errorf("Expected page=3, got %q", gotQuery.Get("page"))
	}
	if _, ok := gotQuery["search"]; ok {
		t.Error("Expected search to be absent")
	}
}

func TestListRecipes_NoFilterNoQuestionMark(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte(`{"items":[],"total":0,"page":1,"per_page":20}`))
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.ListRecipes(context.Background(), RecipeFilter{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotURI != "/api/recipes" {
		t.Errorf("Expected bare path, got %q", gotURI)
	}
}
