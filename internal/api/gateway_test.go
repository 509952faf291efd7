package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_SuccessReturnsParsedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"c1","name":"Desserts"}]`))
	}))
	defer server.Close()

	client := New(server.URL)
	cats, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Desserts" {
		t.Errorf("Unexpected categories: %+v", cats)
	}
}

func TestClient_ErrorWithDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), "alice", "bad")
	if err == nil {
		t.Fatal("Expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.Status)
	}
	if apiErr.Detail != "Invalid credentials" {
		t.Errorf("Expected detail from body, got %q", apiErr.Detail)
	}
}

func TestClient_ErrorWithUnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>nope</html>`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.ListCategories(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", apiErr.Status)
	}
	if apiErr.Detail != GenericErrorDetail {
		t.Errorf("Expected generic detail, got %q", apiErr.Detail)
	}
}

func TestClient_ErrorWithEmptyDetail(t *testing.T) {
	// Valid JSON but no usable detail field still falls back
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.GetRecipe(context.Background(), "r1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Detail != GenericErrorDetail {
		t.Errorf("Expected generic detail, got %q", apiErr.Detail)
	}
}

func TestClient_BearerTokenInjection(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"u1","username":"alice"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.Me(context.Background(), "tok123"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Expected bearer header, got %q", gotAuth)
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.ListCategories(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Expected no Authorization header, got %q", gotAuth)
	}
}

func TestClient_NoContentDiscardsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL)
	if err := client.DeleteCategory(context.Background(), "tok", "c1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestClient_UploadMultipart(t *testing.T) {
	var gotPath, gotContentType, gotField, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected file field: %v", err)
		} else {
			defer file.Close()
			buf := make([]byte, 16)
			n, _ := file.Read(buf)
			gotContent = string(buf[:n])
			gotField = header.Filename
		}

		w.Write([]byte(`{"id":"cat1","name":"Desserts","image_url":"/uploads/x.png"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	cat, err := client.UploadCategoryImage(context.Background(), "tok", "cat1", "photo.png", strings.NewReader("fakepng"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/api/categories/cat1/image" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data; boundary=") {
		t.Errorf("Expected multipart content type, got %q", gotContentType)
	}
	if gotField != "photo.png" || gotContent != "fakepng" {
		t.Errorf("Unexpected file part: name=%q content=%q", gotField, gotContent)
	}
	if cat.ImageURL == "" {
		t.Error("Expected image URL in response")
	}
}

func TestClient_PathEscaping(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Recette introuvable"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	client.GetRecipe(context.Background(), "a/b c")

	if !strings.Contains(gotURI, "/api/recipes/a%2Fb%20c") {
		t.Errorf("Expected escaped path segment, got %q", gotURI)
	}
}
